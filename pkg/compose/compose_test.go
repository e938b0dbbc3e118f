package compose_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fieldblocks/pkg/compose"
)

func TestCompose(t *testing.T) {
	cases := []struct {
		name     string
		executed string
		inner    string
		opts     compose.Options
		want     string
	}{
		{
			name:     "default wrapper class",
			executed: `<section><InnerBlocks /></section>`,
			inner:    `<p>child</p>`,
			opts:     compose.Options{Wrap: true},
			want:     `<section><div class="fieldblocks-inner-blocks"><p>child</p></div></section>`,
		},
		{
			name:     "reuses placeholder class",
			executed: `<section><InnerBlocks className="card-body" templateLock="all" /></section>`,
			inner:    `<p>child</p>`,
			opts:     compose.Options{Wrap: true},
			want:     `<section><div class="card-body"><p>child</p></div></section>`,
		},
		{
			name:     "unwrapped",
			executed: `<div><InnerBlocks/></div>`,
			inner:    `<p>child</p>`,
			want:     `<div><p>child</p></div>`,
		},
		{
			name:     "dollar sequences kept literally",
			executed: `<div><InnerBlocks /></div>`,
			inner:    `<p>$1 costs $2.50</p>`,
			want:     `<div><p>$1 costs $2.50</p></div>`,
		},
		{
			name:     "single substitution",
			executed: `<InnerBlocks /><InnerBlocks />`,
			inner:    `x`,
			want:     `x<InnerBlocks />`,
		},
		{
			name:     "editing leaves placeholder",
			executed: `<div><InnerBlocks /></div>`,
			inner:    `<p>child</p>`,
			opts:     compose.Options{Editing: true, Wrap: true},
			want:     `<div><InnerBlocks /></div>`,
		},
		{
			name:     "no placeholder",
			executed: `<p>plain</p>`,
			inner:    `<p>child</p>`,
			want:     `<p>plain</p>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := compose.Compose(tc.executed, tc.inner, tc.opts)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("compose mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHasPlaceholder(t *testing.T) {
	if !compose.HasPlaceholder(`<div><innerblocks /></div>`) {
		t.Fatalf("expected case-insensitive placeholder match")
	}
	if compose.HasPlaceholder(`<div>InnerBlocks</div>`) {
		t.Fatalf("expected plain text not to match")
	}
}
