// Package metrics holds the Prometheus collectors owned by the service layer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upload outcomes used as the "result" label.
const (
	ResultSuccess       = "success"
	ResultRejected      = "rejected"
	ResultStorageError  = "storage_error"
	ResultMetadataError = "metadata_error"
)

// Uploads counts upload attempts by outcome and the bytes stored.
type Uploads struct {
	Total *prometheus.CounterVec
	Bytes prometheus.Counter
}

// NewUploads creates and registers the upload collectors on reg.
func NewUploads(reg prometheus.Registerer) (*Uploads, error) {
	u := &Uploads{
		Total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filedrive_uploads_total",
				Help: "Upload attempts by result.",
			},
			[]string{"result"},
		),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filedrive_upload_bytes_total",
			Help: "Bytes written to object storage by completed uploads.",
		}),
	}
	for _, c := range []prometheus.Collector{u.Total, u.Bytes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Observe records one upload outcome. It is a no-op on a nil receiver.
func (u *Uploads) Observe(result string, bytes int64) {
	if u == nil {
		return
	}
	u.Total.WithLabelValues(result).Inc()
	if result == ResultSuccess && bytes > 0 {
		u.Bytes.Add(float64(bytes))
	}
}
