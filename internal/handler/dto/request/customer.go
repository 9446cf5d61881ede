package request

type CreateCustomerRequest struct {
	Name  string   `json:"name" binding:"required"`
	Phone string   `json:"phone" binding:"required"`
	Tags  []string `json:"tags,omitempty"`
	Notes string   `json:"notes,omitempty"`
}

type UpdateCustomerRequest struct {
	Name  string   `json:"name" binding:"required"`
	Tags  []string `json:"tags,omitempty"`
	Notes string   `json:"notes,omitempty"`
}
