package enrollment

import (
	"context"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, cl *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	Update(ctx context.Context, cl *Client) error
	List(ctx context.Context, limit, offset int) ([]*Client, int, error)
}

type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	Update(ctx context.Context, c *Contract) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Contract, error)
}

type BeneficiaryRepository interface {
	Create(ctx context.Context, b *Beneficiary) error
	GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error)
	GetByDocument(ctx context.Context, documentID string) (*Beneficiary, error)
	Update(ctx context.Context, b *Beneficiary) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*Beneficiary, error)
	Search(ctx context.Context, q SearchQuery, limit, offset int) ([]*Beneficiary, int, error)
}
