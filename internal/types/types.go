package types

// AnalyzeRequest is the request body for the analyze endpoint. Input is a
// GitHub profile URL or a bare username.
type AnalyzeRequest struct {
	Input string `json:"url" binding:"required,max=200"`
}
