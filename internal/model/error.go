package model

// AppError describes a failure that reached the request boundary.
//
// The HTTP surface only returns Message as plain text; Code and Stage feed
// logs and the error counters.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage"`

	URL  string `json:"url,omitempty"`
	Hint string `json:"hint,omitempty"`
}

func (e AppError) String() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}
