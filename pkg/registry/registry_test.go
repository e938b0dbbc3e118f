package registry_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/registry"
)

func TestMemory_RegisterDerivesKeysAndParents(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(model.BlockType{
		Name:     "cards",
		Template: "blocks/cards",
		Fields: []model.FieldDefinition{
			{Name: "heading", Type: model.FieldTypeText},
			{Key: "field_items", Type: model.FieldTypeRepeater, SubFields: []model.FieldDefinition{
				{Name: "title", Type: model.FieldTypeText},
			}},
		},
	})

	fields, err := reg.Fields("cards")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}

	type summary struct{ Key, Name, Parent string }
	got := make([]summary, 0, len(fields))
	for _, f := range fields {
		got = append(got, summary{f.Key, f.Name, f.Parent})
	}
	want := []summary{
		{"field_heading", "heading", ""},
		{"field_items", "items", ""},
		{"field_title", "title", "field_items"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_Errors(t *testing.T) {
	reg := registry.New()
	if err := reg.Register(model.BlockType{}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	reg.MustRegister(model.BlockType{Name: "hero"})
	if err := reg.Register(model.BlockType{Name: "hero"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(model.BlockType{Name: "dup", Fields: []model.FieldDefinition{{Name: "a"}, {Key: "field_a"}}}); err == nil {
		t.Fatalf("expected duplicate field key error")
	}
	if _, err := reg.BlockType("missing"); !errors.Is(err, registry.ErrBlockTypeNotFound) {
		t.Fatalf("expected ErrBlockTypeNotFound, got %v", err)
	}
}

func TestMemory_DecoratorsRunInOrder(t *testing.T) {
	reg := registry.New(registry.WithDecorator(model.DecoratorFunc(func(block *model.BlockType) error {
		if block.Title == "" {
			block.Title = block.Name
		}
		return nil
	})))
	reg.MustRegister(model.BlockType{Name: "hero"})

	block, err := reg.BlockType("hero")
	if err != nil {
		t.Fatalf("block type: %v", err)
	}
	if block.Title != "hero" {
		t.Fatalf("expected derived title, got %q", block.Title)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"blocks/hero.yaml": {Data: []byte(`
name: hero
title: Hero
template: blocks/hero
validate_on_load: true
fields:
  - name: headline
    type: text
    required: true
  - name: style
    type: select
    choices:
      - value: light
      - value: dark
`)},
		"blocks/more.json": {Data: []byte(`{"blocks":[{"name":"quote","template":"blocks/quote","fields":[{"key":"field_quote","type":"textarea"}]}]}`)},
		"README.md":        {Data: []byte("ignored")},
	}

	reg, err := registry.LoadFS(files)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"hero", "quote"}, reg.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	hero, err := reg.BlockType("hero")
	if err != nil {
		t.Fatalf("hero: %v", err)
	}
	if !hero.ValidateOnLoad || hero.Fields[0].Key != "field_headline" || !hero.Fields[0].Required {
		t.Fatalf("unexpected hero definition: %+v", hero)
	}
	if len(hero.Fields[1].Choices) != 2 {
		t.Fatalf("expected two choices, got %+v", hero.Fields[1].Choices)
	}

	quote, err := reg.BlockType("quote")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if quote.Fields[0].Name != "quote" {
		t.Fatalf("expected name derived from key, got %q", quote.Fields[0].Name)
	}
}

func TestLoadFS_InvalidFile(t *testing.T) {
	files := fstest.MapFS{"broken.yaml": {Data: []byte("name: [unterminated")}}
	if _, err := registry.LoadFS(files); err == nil {
		t.Fatalf("expected parse error")
	}
}
