package server

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/xltables/internal/common"
)

// str reads a string field; missing or non-string fields read as "".
func str(req *structpb.Struct, field string) string {
	return req.GetFields()[field].GetStringValue()
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// structpb only accepts []any for lists.
func strings1D(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func strings2D(in [][]string) []any {
	out := make([]any, len(in))
	for i, row := range in {
		out[i] = strings1D(row)
	}
	return out
}
