package export

import (
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/codec"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/parser"
)

// Download is a file ready to be handed back to the user.
type Download struct {
	Name        string
	ContentType string
	Data        []byte
}

// Original decodes a stored payload back into the exact uploaded bytes.
func Original(name, payload string) (Download, error) {
	data, err := codec.Decode(payload)
	if err != nil {
		return Download{}, sheetchart.NewPipelineError("decode", name, err)
	}
	return Download{
		Name:        name,
		ContentType: parser.ContentType(name),
		Data:        data,
	}, nil
}
