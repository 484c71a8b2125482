package repos

import (
	"storefront/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Bind records u as the identity signed in on browser session sid.
func (r *SessionRepo) Bind(sid string, u domain.User) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,email,name,role,token,last_seen)
                          VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET
                            user_id=excluded.user_id, email=excluded.email, name=excluded.name,
                            role=excluded.role, token=excluded.token, last_seen=CURRENT_TIMESTAMP`,
		sid, u.ID, u.Email, u.Name, string(u.Role), u.Token)
	return err
}

// User returns the identity bound to sid, or sql.ErrNoRows when anonymous.
func (r *SessionRepo) User(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT user_id, COALESCE(email,'') AS email, COALESCE(name,'') AS name,
             role, COALESCE(token,'') AS token
      FROM sessions
      WHERE id=? AND user_id IS NOT NULL`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions
                          SET user_id=NULL,email=NULL,name=NULL,role=NULL,token=NULL,last_seen=CURRENT_TIMESTAMP
                          WHERE id=?`, sid)
	return err
}
