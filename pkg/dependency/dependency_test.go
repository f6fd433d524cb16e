package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/gantta/pkg/model"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Reference
	}{
		{
			name: "two codes",
			in:   "1FS,2SS",
			want: []Reference{{OutlineNumber: "1", TypeCode: "FS"}, {OutlineNumber: "2", TypeCode: "SS"}},
		},
		{
			name: "nested outline and spaces",
			in:   " 2.1FF , 3SF ",
			want: []Reference{{OutlineNumber: "2.1", TypeCode: "FF"}, {OutlineNumber: "3", TypeCode: "SF"}},
		},
		{name: "malformed", in: "bad,", want: nil},
		{name: "lowercase code", in: "1fs", want: nil},
		{name: "lag suffix is not a code", in: "1FS+2 days", want: nil},
		{name: "absent", in: nil, want: nil},
		{
			name: "mixed keeps valid",
			in:   "4FS,,x,5XY",
			want: []Reference{{OutlineNumber: "4", TypeCode: "FS"}, {OutlineNumber: "5", TypeCode: "XY"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseText(tt.in))
		})
	}
}

func TestMapTypeCode(t *testing.T) {
	assert.Equal(t, model.StartToStart, MapTypeCode("SS"))
	assert.Equal(t, model.StartToFinish, MapTypeCode("SF"))
	assert.Equal(t, model.FinishToStart, MapTypeCode("FS"))
	assert.Equal(t, model.FinishToFinish, MapTypeCode("FF"))

	seen := map[model.DependencyType]bool{}
	for _, code := range []string{"SS", "SF", "FS", "FF"} {
		seen[MapTypeCode(code)] = true
	}
	assert.Len(t, seen, 4)

	for _, code := range []string{"", "XY", "fs", "FSS"} {
		assert.Equal(t, model.FinishToStart, MapTypeCode(code), code)
	}
}
