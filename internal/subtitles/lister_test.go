package subtitles_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ytlantern/internal/subtitles"
)

func TestScanListing(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
	}{
		{
			name: "official section returned in order",
			input: "[info] Available subtitles for dQw4w9WgXcQ:\n" +
				"Language formats\n" +
				"en       vtt, ttml, srv3\n" +
				"es-419   vtt, ttml\n" +
				"danmaku  xml\n" +
				"\n" +
				"trailing noise\n",
			want: []string{"en", "es-419", "danmaku"},
		},
		{
			name: "auto captions only",
			input: "[info] Available automatic captions for dQw4w9WgXcQ:\n" +
				"af       vtt\n" +
				"en       vtt\n",
			want: []string{"auto"},
		},
		{
			name:  "neither marker",
			input: "[info] nothing to see here\nsome other output\n",
			want:  []string{},
		},
		{
			name: "official wins over auto",
			input: "[info] Available automatic captions for x:\n" +
				"[info] Available subtitles for x:\n" +
				"Language formats\n" +
				"zh-Hans  vtt\n",
			want: []string{"zh-Hans"},
		},
		{
			name: "section ends at first non-language line",
			input: "[info] Available subtitles for x:\n" +
				"en  vtt\n" +
				"Deleting original file foo.vtt\n" +
				"fr  vtt\n",
			want: []string{"en"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := subtitles.ScanListing(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ScanListing = %v, want %v", got, tc.want)
			}
		})
	}
}

type stubListClient struct {
	output string
	err    error
}

func (s stubListClient) ListSubtitles(context.Context, string) (string, error) {
	return s.output, s.err
}

func TestListToolFailureYieldsEmpty(t *testing.T) {
	lister := subtitles.NewLister(stubListClient{err: errors.New("exit status 1")}, nil)
	got := lister.List(context.Background(), "url")
	if len(got) != 0 {
		t.Fatalf("List = %v, want empty", got)
	}
}

func TestListParsesToolOutput(t *testing.T) {
	lister := subtitles.NewLister(stubListClient{
		output: "[info] Available subtitles for x:\nLanguage formats\nen  vtt\n",
	}, nil)
	got := lister.List(context.Background(), "url")
	if !reflect.DeepEqual(got, []string{"en"}) {
		t.Fatalf("List = %v", got)
	}
}
