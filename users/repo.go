package users

// Account is a stored user together with its password hash. Only the
// development backend keeps accounts; the client never sees the hash.
type Account struct {
	User
	PasswordHash []byte
}

type Repo interface {
	Upsert(account *Account) error
	Delete(email string) error
	GetByEmail(email string) (*Account, error)
	GetByID(ID string) (*Account, error)
	List(offset, limit int) ([]*Account, error)
}
