package payload

import "github.com/vasapolrittideah/identity-docstore/identity/model"

type CreateRoleRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type RoleResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
}

func NewRoleResponse(role *model.Role) RoleResponse {
	return RoleResponse{
		ID:             role.ID.Hex(),
		Name:           role.Name,
		NormalizedName: role.NormalizedName,
	}
}

func NewRoleResponses(roles []*model.Role) []RoleResponse {
	resp := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		resp = append(resp, NewRoleResponse(role))
	}

	return resp
}

type ClaimRequest struct {
	Type  string `json:"type"  validate:"required"`
	Value string `json:"value"`
}

func (r ClaimRequest) Claim() model.Claim {
	return model.Claim{Type: r.Type, Value: r.Value}
}
