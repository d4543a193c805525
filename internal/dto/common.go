package dto

// ErrorResponse is the body of every failed request. Kind names the ledger
// error kind (for example "OverPayment") so clients can branch on it.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// PageParams are the offset pagination query parameters shared by list endpoints.
type PageParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=200"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}
