package metadata

import (
	"github.com/kailas-cloud/lexiscope/internal/domain/metadata"
)

// recordJSON is the JSON document stored per case.
type recordJSON struct {
	Identity   string `json:"identity"`
	Title      string `json:"title"`
	Judges     string `json:"judges"`
	Date       string `json:"date"`
	Summary    string `json:"summary"`
	SourcePath string `json:"source_path"`
	Status     string `json:"status"`
	UpdatedAt  int64  `json:"updated_at"`
}

func toJSON(r *metadata.Record) recordJSON {
	return recordJSON{
		Identity:   r.Identity(),
		Title:      r.Title(),
		Judges:     r.Judges(),
		Date:       r.DecisionDate(),
		Summary:    r.Summary(),
		SourcePath: r.SourcePath(),
		Status:     string(r.Status()),
		UpdatedAt:  r.UpdatedAt(),
	}
}

func (d recordJSON) toDomain() (metadata.Record, error) {
	status, err := metadata.ParseStatus(d.Status)
	if err != nil {
		return metadata.Record{}, err
	}
	return metadata.Reconstruct(d.Identity, d.Title, d.Judges, d.Date, d.Summary, d.SourcePath, status, d.UpdatedAt), nil
}
