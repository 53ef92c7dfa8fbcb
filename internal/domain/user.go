package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// Roles carried in JWT claims. Identity issuance is an external collaborator;
// the engine only validates tokens and reads these.
const (
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
	RolePartner  = "partner"
	RoleCustomer = "customer"
)

// User is the authenticated principal reconstructed from token claims. For
// suppliers and partners, ActorID is the supplier/partner row the account is
// bound to.
type User struct {
	ID      string `json:"id"`
	Phone   string `json:"phone"`
	Role    string `json:"role"`
	ActorID string `json:"actorId,omitempty"`
}
