package handlers

// SubmitRequest is the submission payload captured by the browser extension.
type SubmitRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ResultResponse carries the identifier of a created job.
type ResultResponse struct {
	Result string `json:"result"`
}

// ErrorResponse carries a human-readable failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse carries a page of jobs plus the total count for the filter.
type ListResponse struct {
	Jobs  interface{} `json:"jobs"`
	Count int64       `json:"count"`
}
