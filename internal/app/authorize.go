package app

import "github.com/sumamakhan761/vendor-management/internal/domain"

// Authorize decides whether session may mutate vendor. A nil vendor means the
// lookup found nothing. The checks run in the order the API reports them:
// missing session, session without a user id, missing record, foreign owner.
func Authorize(session *domain.Session, vendor *domain.Vendor) error {
	if err := requireUser(session); err != nil {
		return err
	}
	if vendor == nil {
		return ErrNotFound
	}
	if !vendor.OwnedBy(session.UserID) {
		return ErrForbidden
	}
	return nil
}

func requireUser(session *domain.Session) error {
	if session == nil {
		return ErrUnauthorized
	}
	if !session.HasUserID() {
		return ErrMissingUserID
	}
	return nil
}
