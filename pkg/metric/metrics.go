//go:generate ${TOOLS_BIN}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Metrics=Metrics"
package metric

import "time"

type (
	Labels map[string]string

	Metrics interface {
		With(Labels) Metrics
		Increment(name string)
		Duration(name string, duration time.Duration)
	}
)
