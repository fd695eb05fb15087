package supervise

import (
	"strings"
	"time"
)

// StatusInfo is a read-only snapshot of one active record.
type StatusInfo struct {
	Repo    string
	Command string
	PID     int
	Uptime  time.Duration
	Mode    string // "compose", "npm+docker", or "npm"
	LogPath string
}

// Status reports every active record, sorted by repository then command.
// Pure read; it never touches the processes themselves.
func (s *Supervisor) Status() []StatusInfo {
	recs := s.snapshot()
	infos := make([]StatusInfo, 0, len(recs))
	now := time.Now()
	for _, rec := range recs {
		mode := "npm"
		switch {
		case rec.Classification.ComposeManaged:
			mode = "compose"
		case rec.Classification.NPMUsesDocker:
			mode = "npm+docker"
			if len(rec.Classification.Services) > 0 {
				mode += " [" + strings.Join(rec.Classification.Services, ",") + "]"
			}
		}
		infos = append(infos, StatusInfo{
			Repo:    rec.Repo,
			Command: rec.Command,
			PID:     rec.PID,
			Uptime:  now.Sub(rec.StartedAt).Truncate(time.Second),
			Mode:    mode,
			LogPath: rec.LogPath,
		})
	}
	return infos
}
