package collegedata_test

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/campusbuddy/helpdesk/core/collegedata"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "blanks only", in: " , ,, ", want: nil},
		{name: "single", in: "library", want: []string{"library"}},
		{name: "trimmed", in: " cse , labs,  ", want: []string{"cse", "labs"}},
		{name: "inner spaces kept", in: "open hours,exam cell", want: []string{"open hours", "exam cell"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collegedata.ParseTags(tt.in))
		})
	}
}

func TestParseTags_properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[a-z ,]{0,40}`).Draw(t, "tags")
		tags := collegedata.ParseTags(in)

		if len(tags) > strings.Count(in, ",")+1 {
			t.Fatalf("got %d tags from %q", len(tags), in)
		}
		for _, tag := range tags {
			if tag == "" || tag != strings.TrimSpace(tag) || strings.Contains(tag, ",") {
				t.Fatalf("bad tag %q from %q", tag, in)
			}
		}
		// parsing the joined tags is stable
		if again := collegedata.ParseTags(strings.Join(tags, ",")); len(tags) > 0 && !equal(again, tags) {
			t.Fatalf("reparse %q != %q", again, tags)
		}
	})
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewRecord_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	tests := []struct {
		name    string
		data    collegedata.NewRecord
		wantTag string
	}{
		{name: "missing title", data: collegedata.NewRecord{Category: "Labs", Content: "x"}, wantTag: "title:required"},
		{name: "missing category", data: collegedata.NewRecord{Title: "x", Content: "x"}, wantTag: "category:required"},
		{name: "unknown category", data: collegedata.NewRecord{Title: "x", Category: "Sports", Content: "x"}, wantTag: "category:category"},
		{name: "category is case sensitive", data: collegedata.NewRecord{Title: "x", Category: "labs", Content: "x"}, wantTag: "category:category"},
		{name: "blank content", data: collegedata.NewRecord{Title: "x", Category: "Labs", Content: "  "}, wantTag: "content:required"},
		{name: "category with spaces", data: collegedata.NewRecord{Title: "Office", Category: " Contact Information ", Content: "Room 12"}},
		{name: "valid", data: collegedata.NewRecord{Title: "Robotics Lab", Category: "Labs", Content: "Block B", Tags: "robots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantTag == "" {
				require.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Equal(t, tt.wantTag, vErrs[0].Field()+":"+vErrs[0].Tag())
		})
	}
}
