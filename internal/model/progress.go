package model

// Progress is the raw progress payload reported by the remote optimizer.
type Progress struct {
	Status   string
	Progress Value
	Total    Value
	Results  []*Row
}

// ProgressPage is the enriched and paginated view of a task progress.
type ProgressPage struct {
	TaskID       string
	Method       string
	Status       string
	Progress     Value
	Total        Value
	Results      []*Row
	Page         int
	PageSize     int
	TotalResults int
	TotalPages   int
}
