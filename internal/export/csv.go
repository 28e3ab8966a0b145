package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"protrack/internal/tracker"
)

// ToCSV writes one row per task with its tracked time. Tasks without a
// timer entry export as zero seconds.
func ToCSV(st tracker.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Task", "Project", "Priority", "Status", "Created", "Tracked (s)", "Tracked"}); err != nil {
		return err
	}

	names := make(map[string]string, len(st.Projects))
	for _, p := range st.Projects {
		names[p.ID] = p.Name
	}

	for _, task := range st.Tasks {
		projectName, ok := names[task.ProjectID]
		if !ok {
			projectName = tracker.GeneralBucket
		}
		secs := st.Stopwatch.TaskSeconds[task.ID]

		row := []string{
			task.Title,
			projectName,
			string(task.Priority),
			string(task.Status),
			task.CreatedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", secs),
			FormatDuration(secs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
