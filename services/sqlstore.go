package services

import (
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"genesis-events/models"
)

// SQLStore implements Store on a MySQL database.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const eventColumns = `id, name, description, venue, date, event_day,
	entry_fee, on_spot_entry_fee, payment_method, on_spot_payment_method,
	is_team_event, members_per_team, max_teams,
	registration_start_date, registration_start_time,
	registration_end_date, registration_end_time, allow_late_registration,
	allow_on_spot_registration, on_spot_start_time, on_spot_end_time,
	allow_after_deadline, allow_after_deadline_admins,
	allow_after_deadline_volunteers, deadline_override_reason,
	current_participants, is_active, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	var e models.Event
	var desc, venue, onSpotMethod, regStartDate, regStartTime, regEndDate, regEndTime sql.NullString
	var onSpotStart, onSpotEnd, overrideReason, createdBy, createdAt, updatedAt sql.NullString
	var onSpotFee sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &desc, &venue, &e.Date, &e.EventDay,
		&e.EntryFee, &onSpotFee, &e.PaymentMethod, &onSpotMethod,
		&e.IsTeamEvent, &e.MembersPerTeam, &e.MaxTeams,
		&regStartDate, &regStartTime, &regEndDate, &regEndTime, &e.AllowLateRegistration,
		&e.AllowOnSpotRegistration, &onSpotStart, &onSpotEnd,
		&e.RegistrationControls.AllowAfterDeadline,
		&e.RegistrationControls.AllowAfterDeadlineForAdmins,
		&e.RegistrationControls.AllowAfterDeadlineForVolunteers,
		&overrideReason,
		&e.CurrentParticipants, &e.IsActive, &createdBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Description = desc.String
	e.Venue = venue.String
	e.OnSpotPaymentMethod = onSpotMethod.String
	e.RegistrationStartDate = regStartDate.String
	e.RegistrationStartTime = regStartTime.String
	e.RegistrationEndDate = regEndDate.String
	e.RegistrationEndTime = regEndTime.String
	e.OnSpotStartTime = onSpotStart.String
	e.OnSpotEndTime = onSpotEnd.String
	e.RegistrationControls.DeadlineOverrideReason = overrideReason.String
	e.CreatedBy = createdBy.String
	e.CreatedAt = createdAt.String
	e.UpdatedAt = updatedAt.String
	if onSpotFee.Valid {
		fee := int(onSpotFee.Int64)
		e.OnSpotEntryFee = &fee
	}
	return &e, nil
}

func (s *SQLStore) GetEvent(id string) (*models.Event, error) {
	row := s.db.QueryRow("SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get event")
	}
	if err := s.loadClosures(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLStore) loadClosures(e *models.Event) error {
	rows, err := s.db.Query("SELECT closure_date, closed FROM event_daily_closures WHERE event_id = ?", e.ID)
	if err != nil {
		return errors.Wrap(err, "load closures")
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var closed bool
		if err := rows.Scan(&date, &closed); err != nil {
			return errors.Wrap(err, "scan closure")
		}
		if e.DailyRegistrationClosure == nil {
			e.DailyRegistrationClosure = map[string]bool{}
		}
		e.DailyRegistrationClosure[date] = closed
	}
	return rows.Err()
}

func (s *SQLStore) ListEvents(activeOnly bool) ([]models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY date, name"
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	defer rows.Close()
	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadClosures(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) CreateEvent(e *models.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Description, e.Venue, e.Date, e.EventDay,
		e.EntryFee, nullableInt(e.OnSpotEntryFee), e.PaymentMethod, e.OnSpotPaymentMethod,
		e.IsTeamEvent, e.MembersPerTeam, e.MaxTeams,
		e.RegistrationStartDate, e.RegistrationStartTime,
		e.RegistrationEndDate, e.RegistrationEndTime, e.AllowLateRegistration,
		e.AllowOnSpotRegistration, e.OnSpotStartTime, e.OnSpotEndTime,
		e.RegistrationControls.AllowAfterDeadline,
		e.RegistrationControls.AllowAfterDeadlineForAdmins,
		e.RegistrationControls.AllowAfterDeadlineForVolunteers,
		e.RegistrationControls.DeadlineOverrideReason,
		e.CurrentParticipants, e.IsActive, e.CreatedBy, e.CreatedAt, e.UpdatedAt)
	return errors.Wrap(err, "create event")
}

func (s *SQLStore) UpdateEvent(e *models.Event) error {
	_, err := s.db.Exec(`
		UPDATE events SET name = ?, description = ?, venue = ?, date = ?, event_day = ?,
			entry_fee = ?, on_spot_entry_fee = ?, payment_method = ?, on_spot_payment_method = ?,
			is_team_event = ?, members_per_team = ?, max_teams = ?,
			registration_start_date = ?, registration_start_time = ?,
			registration_end_date = ?, registration_end_time = ?, allow_late_registration = ?,
			allow_on_spot_registration = ?, on_spot_start_time = ?, on_spot_end_time = ?,
			allow_after_deadline = ?, allow_after_deadline_admins = ?,
			allow_after_deadline_volunteers = ?, deadline_override_reason = ?,
			is_active = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.Description, e.Venue, e.Date, e.EventDay,
		e.EntryFee, nullableInt(e.OnSpotEntryFee), e.PaymentMethod, e.OnSpotPaymentMethod,
		e.IsTeamEvent, e.MembersPerTeam, e.MaxTeams,
		e.RegistrationStartDate, e.RegistrationStartTime,
		e.RegistrationEndDate, e.RegistrationEndTime, e.AllowLateRegistration,
		e.AllowOnSpotRegistration, e.OnSpotStartTime, e.OnSpotEndTime,
		e.RegistrationControls.AllowAfterDeadline,
		e.RegistrationControls.AllowAfterDeadlineForAdmins,
		e.RegistrationControls.AllowAfterDeadlineForVolunteers,
		e.RegistrationControls.DeadlineOverrideReason,
		e.IsActive, e.UpdatedAt, e.ID)
	// MySQL reports zero affected rows for a no-change update, so presence
	// is the caller's concern, checked on read.
	return errors.Wrap(err, "update event")
}

func (s *SQLStore) DeleteEvent(id string, hard bool) error {
	var err error
	if hard {
		_, err = s.db.Exec("DELETE FROM events WHERE id = ?", id)
	} else {
		_, err = s.db.Exec("UPDATE events SET is_active = 0 WHERE id = ?", id)
	}
	return errors.Wrap(err, "delete event")
}

func (s *SQLStore) SetDailyClosure(eventID, date string, closed bool) error {
	_, err := s.db.Exec(`
		INSERT INTO event_daily_closures (event_id, closure_date, closed)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE closed = VALUES(closed)`,
		eventID, date, closed)
	return errors.Wrap(err, "set daily closure")
}

const participantColumns = `id, event_id, full_name, email, phone, college, standard, stream,
	qr_code, payment_status, payment_method, receipt_url, transaction_id,
	registration_type, entry_fee_paid, team_id, team_name, is_team_lead,
	is_verified, verification_time, assigned_room, registered_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	var p models.Participant
	var college, standard, stream, method, receipt, txn, teamID, teamName, room sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.EventID, &p.FullName, &p.Email, &p.Phone, &college, &standard, &stream,
		&p.QRCode, &p.PaymentStatus, &method, &receipt, &txn,
		&p.RegistrationType, &p.EntryFeePaid, &teamID, &teamName, &p.IsTeamLead,
		&p.IsVerified, &verifiedAt, &room, &p.RegisteredAt,
	)
	if err != nil {
		return nil, err
	}
	p.College = college.String
	p.Standard = standard.String
	p.Stream = stream.String
	p.PaymentMethod = models.ParticipantPaymentMethod(method.String)
	p.ReceiptURL = receipt.String
	p.TransactionID = txn.String
	p.TeamID = teamID.String
	p.TeamName = teamName.String
	p.AssignedRoom = room.String
	if verifiedAt.Valid {
		t := verifiedAt.Time
		p.VerificationTime = &t
	}
	return &p, nil
}

func (s *SQLStore) participantBy(field, value string) (*models.Participant, error) {
	row := s.db.QueryRow("SELECT "+participantColumns+" FROM participants WHERE "+field+" = ?", value)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find participant by %s", field)
	}
	return p, nil
}

func (s *SQLStore) GetParticipant(id string) (*models.Participant, error) {
	return s.participantBy("id", id)
}

func (s *SQLStore) FindParticipantByQRCode(code string) (*models.Participant, error) {
	return s.participantBy("qr_code", code)
}

func (s *SQLStore) FindParticipantByTransactionID(txnID string) (*models.Participant, error) {
	return s.participantBy("transaction_id", txnID)
}

func (s *SQLStore) FindParticipantByEmail(eventID, email string) (*models.Participant, error) {
	row := s.db.QueryRow(
		"SELECT "+participantColumns+" FROM participants WHERE event_id = ? AND email = ?",
		eventID, email)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find participant by email")
	}
	return p, nil
}

func (s *SQLStore) ListParticipantsByEvent(eventID string) ([]models.Participant, error) {
	return s.listParticipants("event_id", eventID)
}

func (s *SQLStore) ListTeamMembers(teamID string) ([]models.Participant, error) {
	return s.listParticipants("team_id", teamID)
}

func (s *SQLStore) listParticipants(field, value string) ([]models.Participant, error) {
	rows, err := s.db.Query(
		"SELECT "+participantColumns+" FROM participants WHERE "+field+" = ? ORDER BY registered_at",
		value)
	if err != nil {
		return nil, errors.Wrap(err, "list participants")
	}
	defer rows.Close()
	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan participant")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLStore) CountTeams(eventID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(DISTINCT team_id) FROM participants WHERE event_id = ? AND team_id IS NOT NULL",
		eventID).Scan(&n)
	return n, errors.Wrap(err, "count teams")
}

func (s *SQLStore) CreateParticipants(eventID string, ps []*models.Participant) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin registration tx")
	}
	defer tx.Rollback()

	for _, p := range ps {
		_, err := tx.Exec(`
			INSERT INTO participants (`+participantColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.EventID, p.FullName, p.Email, p.Phone,
			nullableString(p.College), nullableString(p.Standard), nullableString(p.Stream),
			p.QRCode, p.PaymentStatus, nullableString(string(p.PaymentMethod)),
			nullableString(p.ReceiptURL), nullableString(p.TransactionID),
			p.RegistrationType, p.EntryFeePaid,
			nullableString(p.TeamID), nullableString(p.TeamName), p.IsTeamLead,
			p.IsVerified, p.VerificationTime, nullableString(p.AssignedRoom), p.RegisteredAt)
		if err != nil {
			if isDuplicateKey(err) {
				return invariantf("participant %s is already registered for this event", p.Email)
			}
			return errors.Wrap(err, "insert participant")
		}
	}

	// The counter moves in the same transaction as the inserts, as an
	// in-place increment. Concurrent registrations serialize on the row.
	_, err = tx.Exec(
		"UPDATE events SET current_participants = current_participants + ? WHERE id = ?",
		len(ps), eventID)
	if err != nil {
		return errors.Wrap(err, "update participant count")
	}

	return errors.Wrap(tx.Commit(), "commit registration")
}

func (s *SQLStore) UpdateParticipant(p *models.Participant) error {
	_, err := s.db.Exec(`
		UPDATE participants SET payment_status = ?, payment_method = ?, receipt_url = ?,
			transaction_id = ?, is_verified = ?, verification_time = ?, assigned_room = ?
		WHERE id = ?`,
		p.PaymentStatus, nullableString(string(p.PaymentMethod)), nullableString(p.ReceiptURL),
		nullableString(p.TransactionID), p.IsVerified, p.VerificationTime,
		nullableString(p.AssignedRoom), p.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateTransaction
		}
		return errors.Wrap(err, "update participant")
	}
	return nil
}

func (s *SQLStore) MarkVerified(participantID string, ts time.Time, room string) (bool, error) {
	// The is_verified guard makes the first scan win; later scans match no row.
	res, err := s.db.Exec(`
		UPDATE participants SET is_verified = 1, verification_time = ?,
			assigned_room = IF(? = '', assigned_room, ?)
		WHERE id = ? AND is_verified = 0`,
		ts, room, room, participantID)
	if err != nil {
		return false, errors.Wrap(err, "mark verified")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "mark verified")
	}
	return n > 0, nil
}

func (s *SQLStore) CreateVerificationRecord(rec *models.VerificationRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO verification_records (id, participant_id, actor_email, assigned_room, scanned_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.ParticipantID, rec.ActorEmail, nullableString(rec.AssignedRoom), rec.ScannedAt)
	return errors.Wrap(err, "create verification record")
}

func (s *SQLStore) GetStaffByEmail(email string) (*models.StaffUser, error) {
	var u models.StaffUser
	var name sql.NullString
	err := s.db.QueryRow(
		"SELECT id, email, password, full_name, role FROM staff WHERE email = ?",
		email).Scan(&u.ID, &u.Email, &u.Password, &name, &u.Role)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get staff")
	}
	u.FullName = name.String
	return &u, nil
}

func (s *SQLStore) CreateStaff(u *models.StaffUser) error {
	_, err := s.db.Exec(
		"INSERT INTO staff (id, email, password, full_name, role) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Password, nullableString(u.FullName), u.Role)
	if isDuplicateKey(err) {
		return invariantf("staff account for %s already exists", u.Email)
	}
	return errors.Wrap(err, "create staff")
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// isDuplicateKey recognizes MySQL error 1062 (duplicate entry), including
// when the driver error arrives wrapped.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
