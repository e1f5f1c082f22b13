package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/soundscout/soundscout/core"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	// Generation must run from the repo root for the output path to
	// resolve; go:generate in core starts us one level down.
	cwd, err := os.Getwd()
	must(err)
	if strings.HasSuffix(cwd, "core") {
		must(os.Chdir(".."))
	}

	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/soundscout/soundscout/core"),
	)
	must(err)

	g.AddDefinedType(reflect.TypeFor[core.ID]())

	// Timestamps travel as Unix micros. Field options are positional,
	// so each line below is tied to the struct field it comments.
	micro := typeops.WithTimeUnit(typeops.Micro)

	must(g.AddStruct(reflect.TypeFor[core.Asset](),
		structops.WithField(),      // Id
		structops.WithField(),      // Path
		structops.WithField(),      // Filename
		structops.WithField(),      // Format
		structops.WithField(),      // Duration
		structops.WithField(),      // SampleRate
		structops.WithField(),      // BitDepth
		structops.WithField(),      // Channels
		structops.WithField(),      // SizeBytes
		structops.WithField(),      // Tags
		structops.WithField(),      // Description
		structops.WithField(),      // Vector
		structops.WithField(micro), // InsertedAt
		structops.WithField(micro), // UpdatedAt
	))

	must(g.AddStruct(reflect.TypeFor[core.SavedSearch](),
		structops.WithField(),      // Id
		structops.WithField(),      // Name
		structops.WithField(),      // Query
		structops.WithField(micro), // CreatedAt
		structops.WithField(micro), // LastUsed
		structops.WithField(),      // UseCount
	))

	must(g.AddStruct(reflect.TypeFor[core.Checkpoint](),
		structops.WithField(),      // ProcessorType
		structops.WithField(),      // LastID
		structops.WithField(micro), // UpdatedAt
	))

	bs, err := g.Generate()
	must(err)
	must(os.WriteFile("./core/records_mus.gen.go", bs, 0644))
}
