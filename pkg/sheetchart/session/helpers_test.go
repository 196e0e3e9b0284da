package session

import (
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/parser"
)

func parseForTest(data []byte) (models.Table, error) {
	return parser.Parse(data, sheetchart.DefaultOptions())
}
