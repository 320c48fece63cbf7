package loyalty

type RegisterCustomerRequest struct {
	CIN       int64  `json:"cin" validate:"required,gt=0"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
}

// CreditAdjustmentRequest tops up or deducts from the credit balance.
type CreditAdjustmentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Direction string  `json:"direction" validate:"required,oneof=add deduct"`
}

type ListCustomersRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset int    `json:"offset" validate:"gte=0"`
}
