package models

type ErrorResponse struct {
	Error string `json:"error"`
}

type ClearResponse struct {
	StudentID string `json:"student_id"`
	Deleted   int64  `json:"deleted"`
}

type RegenerateResponse struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

type MatchListResponse struct {
	StudentID string  `json:"student_id"`
	Count     int     `json:"count"`
	Matches   []Match `json:"matches"`
}
