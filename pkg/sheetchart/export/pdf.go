package export

import (
	"bytes"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
)

// PageLayout places the chart image on an A4 portrait page, in millimetres.
type PageLayout struct {
	X, Y, Width, Height float64
}

// DefaultPageLayout is a 190x100 mm image at the top left margin.
var DefaultPageLayout = PageLayout{X: 10, Y: 10, Width: 190, Height: 100}

// WritePDF writes a one page A4 document containing the PNG image.
func WritePDF(png []byte, w io.Writer, layout PageLayout) error {
	if len(png) == 0 {
		return sheetchart.NewPipelineError("render", "", sheetchart.ErrNoData)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(png))
	pdf.ImageOptions("chart", layout.X, layout.Y, layout.Width, layout.Height, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return sheetchart.NewPipelineError("render", "", err)
	}
	return pdf.Output(w)
}

// RenderPDF renders res to PNG and wraps it in a PDF page.
func RenderPDF(res series.Result, w io.Writer, opts RenderOptions, layout PageLayout) error {
	var img bytes.Buffer
	if err := RenderPNG(res, &img, opts); err != nil {
		return err
	}
	return WritePDF(img.Bytes(), w, layout)
}
