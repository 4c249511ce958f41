package pdftext

import (
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

// rewriteRelaxed writes a normalized copy of the PDF at in to out, tolerating the structural
// damage (broken xref tables, bad offsets) that the text reader rejects.
func rewriteRelaxed(in, out string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf rewrite: %v", r)
		}
	}()
	// no pdfcpu config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.OptimizeFile(in, out, cfg)
}

// readRepaired rewrites the PDF at path into a second temp file and reads that instead.
func (e *Extractor) readRepaired(path string) ([]string, error) {
	var pages []string
	err := withTempFile(e.cfg.TempDir, nil, e.logger, func(out string) error {
		if err := rewriteRelaxed(path, out); err != nil {
			return err
		}
		var rerr error
		pages, rerr = readPages(out)
		return rerr
	})
	return pages, err
}
