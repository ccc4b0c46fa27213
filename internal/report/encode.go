package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/NetPo4ki/go-watcher/internal/scenario"
)

type jsonFormatter struct{}

func (jsonFormatter) FormatReports(w io.Writer, reports []scenario.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries(reports))
}

type yamlFormatter struct{}

func (yamlFormatter) FormatReports(w io.Writer, reports []scenario.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(entries(reports)); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}
