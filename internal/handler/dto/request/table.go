package request

type CreateTableRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Shape    string `json:"shape" binding:"required,oneof=square round booth bar"`
}

type UpdateTableRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
	Shape    string `json:"shape" binding:"required,oneof=square round booth bar"`
}
