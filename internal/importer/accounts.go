package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/legacycrypt"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

// importGroups splits Clientexec groups into staff and client groups.
func (im *Importer) importGroups(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	groups, err := im.src.Groups(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}

	for _, g := range groups {
		name := convert.DecodeText(g.Name)
		if g.IsAdmin {
			id, err := im.dst.AddStaffGroup(ctx, blesta.StaffGroup{CompanyID: im.opts.CompanyID, Name: name})
			if err != nil {
				return stats, migration.Trace(err)
			}
			if err := im.ids.Put(idmap.StaffGroups, idmap.Key(g.ID), id); err != nil {
				return stats, migration.Trace(err)
			}
		} else {
			id, err := im.dst.AddClientGroup(ctx, blesta.ClientGroup{
				CompanyID:   im.opts.CompanyID,
				Name:        name,
				Description: convert.DecodeText(g.Description),
				Color:       groupColor(g.Color),
			})
			if err != nil {
				return stats, migration.Trace(err)
			}
			if err := im.ids.Put(idmap.ClientGroups, idmap.Key(g.ID), id); err != nil {
				return stats, migration.Trace(err)
			}
		}
		stats.Imported++
	}
	return stats, nil
}

func groupColor(c string) string {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) != 6 {
		return "ffffff"
	}
	return strings.ToLower(c)
}

// importStaff creates logins and staff records for members of admin groups.
func (im *Importer) importStaff(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	users, err := im.loadUsers(ctx)
	if err != nil {
		return stats, err
	}

	for _, u := range users {
		groupID, ok := im.ids.LookupInt(idmap.StaffGroups, u.GroupID)
		if !ok {
			continue
		}
		password, err := carryPassword(u.Password)
		if err != nil {
			return stats, migration.Trace(err)
		}
		userID, err := im.dst.AddUser(ctx, blesta.User{
			Username:  strings.TrimSpace(u.Email),
			Password:  password,
			DateAdded: im.date(u.DateActivated),
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		staffID, err := im.dst.AddStaff(ctx, blesta.Staff{
			UserID:    userID,
			FirstName: convert.DecodeText(u.FirstName),
			LastName:  convert.DecodeText(u.LastName),
			Email:     strings.TrimSpace(u.Email),
			Status:    staffStatus(u.Status),
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.dst.AddStaffToGroup(ctx, staffID, groupID); err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.Users, idmap.Key(u.ID), userID); err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.Staff, idmap.Key(u.ID), staffID); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}

func staffStatus(code int) string {
	if code < 0 {
		return "inactive"
	}
	return "active"
}

// carryPassword keeps the legacy hash. Accounts without one get an
// unguessable bcrypt hash and must reset their password.
func carryPassword(hash string) (string, error) {
	if hash = strings.TrimSpace(hash); hash != "" {
		return hash, nil
	}
	locked, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to lock account: %w", err)
	}
	return string(locked), nil
}

// importClients creates the login, client, primary contact, settings and
// stored card of every member of a client group, in one transaction.
func (im *Importer) importClients(ctx context.Context) (migration.Stats, error) {
	users, err := im.loadUsers(ctx)
	if err != nil {
		return migration.Stats{}, err
	}
	log := im.stepLog(StepClients)

	return im.inTx(ctx, func(dst blesta.Destination, ids mapper) (migration.Stats, error) {
		var stats migration.Stats
		for _, u := range users {
			if _, staff := ids.LookupInt(idmap.Staff, u.ID); staff {
				continue
			}
			groupID, ok := ids.LookupInt(idmap.ClientGroups, u.GroupID)
			if !ok {
				log.WithField("user_id", u.ID).Debugf("Skipping user in unknown group %d", u.GroupID)
				stats.Skipped++
				continue
			}
			if err := im.addClient(ctx, dst, ids, u, groupID); err != nil {
				return stats, err
			}
			stats.Imported++
		}
		return stats, nil
	})
}

func (im *Importer) addClient(ctx context.Context, dst blesta.Destination, ids mapper, u clientexec.User, groupID int64) error {
	password, err := carryPassword(u.Password)
	if err != nil {
		return migration.Trace(err)
	}
	added := im.date(u.DateActivated)
	userID, err := dst.AddUser(ctx, blesta.User{Username: strings.TrimSpace(u.Email), Password: password, DateAdded: added})
	if err != nil {
		return migration.Trace(err)
	}
	clientID, err := dst.AddClient(ctx, blesta.Client{
		IDFormat:      blesta.IDFormat,
		IDValue:       u.ID,
		UserID:        userID,
		ClientGroupID: groupID,
		Status:        convert.ClientStatus(u.Status),
	})
	if err != nil {
		return migration.Trace(err)
	}

	country := strings.ToUpper(strings.TrimSpace(u.Country))
	if len(country) != 2 {
		country = im.opts.DefaultCountry
	}
	contact := blesta.Contact{
		ClientID:    clientID,
		ContactType: "primary",
		FirstName:   convert.DecodeText(u.FirstName),
		LastName:    convert.DecodeText(u.LastName),
		Company:     convert.DecodeText(u.Organization),
		Email:       strings.TrimSpace(u.Email),
		Address1:    convert.DecodeText(u.Address),
		City:        convert.DecodeText(u.City),
		State:       convert.DecodeText(u.State),
		Zip:         strings.TrimSpace(u.Zip),
		Country:     country,
		DateAdded:   added,
	}
	contactID, err := dst.AddContact(ctx, contact)
	if err != nil {
		return migration.Trace(err)
	}
	if phone := strings.TrimSpace(u.Phone); phone != "" {
		if err := dst.AddContactNumber(ctx, blesta.ContactNumber{ContactID: contactID, Number: phone, Type: "phone", Location: "work"}); err != nil {
			return migration.Trace(err)
		}
	}

	if err := dst.AddClientSetting(ctx, clientID, "tax_exempt", fmt.Sprint(!u.Taxable)); err != nil {
		return migration.Trace(err)
	}
	if err := dst.AddClientSetting(ctx, clientID, "default_currency", normalizeCurrency(u.Currency, im.opts.DefaultCurrency)); err != nil {
		return migration.Trace(err)
	}
	if err := im.addCard(ctx, dst, u, contact, contactID); err != nil {
		return err
	}

	if err := ids.Put(idmap.Users, idmap.Key(u.ID), userID); err != nil {
		return migration.Trace(err)
	}
	if err := ids.Put(idmap.Clients, idmap.Key(u.ID), clientID); err != nil {
		return migration.Trace(err)
	}
	if err := ids.Put(idmap.Contacts, idmap.Key(u.ID), contactID); err != nil {
		return migration.Trace(err)
	}
	return nil
}

// addCard moves a stored card. Cards that cannot be decrypted are logged and
// left behind; the client itself is still imported.
func (im *Importer) addCard(ctx context.Context, dst blesta.Destination, u clientexec.User, contact blesta.Contact, contactID int64) error {
	if strings.TrimSpace(u.CardData) == "" {
		return nil
	}
	log := im.stepLog(StepClients).WithField("user_id", u.ID)

	number, err := legacycrypt.Decrypt(u.ID, im.opts.Passphrase, u.CardData, u.CardIV)
	switch {
	case errors.Is(err, legacycrypt.ErrNoPassphrase):
		if !im.warnedCards {
			log.Warn("Stored cards found but no legacy passphrase is configured; cards are not migrated")
			im.warnedCards = true
		}
		return nil
	case err != nil:
		log.Warnf("Could not decrypt stored card: %v", err)
		return nil
	}
	number = digitsOnly(number)
	if len(number) < 12 {
		log.Warn("Decrypted card number is not a card number; skipping")
		return nil
	}

	_, err = dst.AddCreditCard(ctx, blesta.CreditCard{
		ContactID:  contactID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Address1:   contact.Address1,
		City:       contact.City,
		State:      contact.State,
		Zip:        contact.Zip,
		Country:    contact.Country,
		Number:     number,
		Expiration: cardExpiration(u.CardYear, u.CardMonth),
		Last4:      number[len(number)-4:],
		Type:       cardType(number),
		Status:     "active",
	})
	if err != nil {
		return migration.Trace(err)
	}
	return nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cardExpiration renders YYYYMM from Clientexec's month and two or four
// digit year.
func cardExpiration(year, month string) string {
	year = digitsOnly(year)
	month = digitsOnly(month)
	if len(year) == 2 {
		year = "20" + year
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return year + month
}

func cardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "amex"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "mc"
	case strings.HasPrefix(number, "2"):
		return "mc"
	case strings.HasPrefix(number, "6011"), strings.HasPrefix(number, "65"):
		return "disc"
	case strings.HasPrefix(number, "35"):
		return "jcb"
	case strings.HasPrefix(number, "36"), strings.HasPrefix(number, "38"):
		return "dc-int"
	}
	return "other"
}

func normalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return fallback
	}
	return code
}

// importClientNotes copies staff notes. Notes of unknown clients are
// skipped; an unknown author is dropped.
func (im *Importer) importClientNotes(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	notes, err := im.src.ClientNotes(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}

	for _, n := range notes {
		clientID, ok := im.ids.LookupInt(idmap.Clients, n.ClientID)
		if !ok {
			stats.Skipped++
			continue
		}
		title := convert.PlainText(n.Subject)
		if title == "" {
			title = "Note"
		}
		added := im.date(n.Date)
		_, err := im.dst.AddClientNote(ctx, blesta.ClientNote{
			ClientID:    clientID,
			StaffID:     optional(im.ids, idmap.Staff, n.StaffID),
			Title:       title,
			Description: convert.DecodeText(n.Note),
			DateAdded:   added,
			DateUpdated: added,
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}
