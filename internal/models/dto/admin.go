package dto

type CreateClientRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password,omitempty"`
}

type CreateBranchRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Code     string `json:"code" validate:"required,notblank"`
	Address  string `json:"address,omitempty"`
	ClientID string `json:"clientId" validate:"required"`
}

type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=6"`
}

type AssignBranchesRequest struct {
	BranchIDs []string `json:"branchIds" validate:"dive,required"`
}

type SwitchBranchRequest struct {
	BranchID string `json:"branchId" validate:"required"`
}
