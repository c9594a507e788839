package api

import (
	"github.com/shaiso/Concert/internal/mq"
	"github.com/shaiso/Concert/internal/workflow"
)

// ManifestSummary — строка списка манифестов.
type ManifestSummary struct {
	DagID     string `json:"dag_id"`
	Announced bool   `json:"announced"`
	BuildID   string `json:"build_id,omitempty"`
	Location  string `json:"location,omitempty"`
	Tasks     int    `json:"tasks,omitempty"`
}

// SummaryFromAnnouncement строит строку списка из объявления.
func SummaryFromAnnouncement(p mq.ManifestPublishedPayload) ManifestSummary {
	return ManifestSummary{
		DagID:     p.DagID,
		Announced: true,
		BuildID:   p.BuildID.String(),
		Location:  p.Location,
		Tasks:     p.Tasks,
	}
}

// PreviewResponse — манифест, собранный без публикации.
type PreviewResponse struct {
	DagID    string `json:"dag_id"`
	Schedule string `json:"schedule_interval,omitempty"`
	Nodes    int    `json:"nodes"`
	Tasks    int    `json:"tasks"`
	Edges    int    `json:"edges"`
}

// PreviewFromManifest строит PreviewResponse.
func PreviewFromManifest(m *workflow.Manifest) PreviewResponse {
	return PreviewResponse{
		DagID:    m.DagID,
		Schedule: m.Schedule,
		Nodes:    len(m.Nodes),
		Tasks:    m.TaskCount(),
		Edges:    len(m.Edges),
	}
}
