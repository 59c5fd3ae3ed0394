package importer

import (
	"context"
	"time"

	"github.com/gotrs-io/cemigrate/internal/blesta"
	"github.com/gotrs-io/cemigrate/internal/clientexec"
	"github.com/gotrs-io/cemigrate/internal/convert"
	"github.com/gotrs-io/cemigrate/internal/idmap"
	"github.com/gotrs-io/cemigrate/internal/migration"
)

func (im *Importer) importDepartments(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	departments, err := im.src.Departments(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	for _, d := range departments {
		status := "visible"
		if !d.Enabled {
			status = "hidden"
		}
		id, err := im.dst.AddDepartment(ctx, blesta.Department{
			CompanyID:       im.opts.CompanyID,
			Name:            convert.DecodeText(d.Name),
			Description:     convert.DecodeText(d.Description),
			Method:          "none",
			DefaultPriority: "medium",
			Status:          status,
		})
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.Departments, idmap.Key(d.ID), id); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}

// importTickets copies tickets and their log entries as replies. The
// ticket's last activity is the newest log entry.
func (im *Importer) importTickets(ctx context.Context) (migration.Stats, error) {
	tickets, err := im.src.Tickets(ctx)
	if err != nil {
		return migration.Stats{}, migration.Trace(err)
	}
	log := im.stepLog(StepSupportTickets)

	return im.inTx(ctx, func(dst blesta.Destination, ids mapper) (migration.Stats, error) {
		var stats migration.Stats
		for _, t := range tickets {
			departmentID, ok := ids.LookupInt(idmap.Departments, t.DepartmentID)
			if !ok {
				log.WithField("ticket_id", t.ID).Debug("Skipping ticket of unknown department")
				stats.Skipped++
				continue
			}
			logs, err := im.src.TicketLogs(ctx, t.ID)
			if err != nil {
				return stats, migration.Trace(err)
			}

			added := im.date(t.DateSubmitted)
			updated := im.lastActivity(t, logs, added)
			ticket := blesta.Ticket{
				Code:         t.ID,
				DepartmentID: departmentID,
				StaffID:      optional(ids, idmap.Staff, t.StaffID),
				ServiceID:    optional(ids, idmap.Services, t.ServiceID),
				ClientID:     optional(ids, idmap.Clients, t.ClientID),
				Email:        t.Email,
				Summary:      convert.DecodeText(t.Subject),
				Priority:     convert.TicketPriority(t.Priority),
				Status:       convert.TicketStatus(t.Status),
				DateAdded:    added,
				DateUpdated:  updated,
			}
			if ticket.Status == "closed" {
				closed := updated
				ticket.DateClosed = &closed
			}
			ticketID, err := dst.AddTicket(ctx, ticket)
			if err != nil {
				return stats, migration.Trace(err)
			}

			for _, l := range logs {
				reply := blesta.Reply{
					TicketID:  ticketID,
					Type:      convert.ReplyType(l.LogType),
					Details:   im.html.HTML(l.Message),
					DateAdded: im.date(l.Date),
				}
				if staffID, ok := ids.LookupInt(idmap.Staff, l.UserID); ok {
					reply.StaffID = &staffID
				} else {
					reply.ContactID = optional(ids, idmap.Contacts, l.UserID)
				}
				if _, err := dst.AddReply(ctx, reply); err != nil {
					return stats, migration.Trace(err)
				}
			}

			if err := ids.Put(idmap.Tickets, idmap.Key(t.ID), ticketID); err != nil {
				return stats, migration.Trace(err)
			}
			stats.Imported++
		}
		return stats, nil
	})
}

// lastActivity is the ticket's last-log timestamp. Tickets without one use
// their newest log entry, then fallback.
func (im *Importer) lastActivity(t clientexec.Ticket, logs []clientexec.TicketLog, fallback time.Time) time.Time {
	if last := im.datePtr(t.LastLog); last != nil {
		return *last
	}
	var last *time.Time
	for _, l := range logs {
		if d := im.datePtr(l.Date); d != nil && (last == nil || d.After(*last)) {
			last = d
		}
	}
	if last == nil {
		return fallback
	}
	return *last
}

// importKnowledgeBase copies categories parents first, then articles with
// their content and category links.
func (im *Importer) importKnowledgeBase(ctx context.Context) (migration.Stats, error) {
	var stats migration.Stats
	categories, err := im.src.KBCategories(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	now := im.opts.Now().UTC()

	addCategory := func(c clientexec.KBCategory, parent *int64) error {
		id, err := im.dst.AddKBCategory(ctx, blesta.KBCategory{
			ParentID:    parent,
			CompanyID:   im.opts.CompanyID,
			Name:        convert.DecodeText(c.Name),
			Description: convert.DecodeText(c.Description),
			Access:      convert.KBAccess(c.Access),
			DateCreated: now,
			DateUpdated: now,
		})
		if err != nil {
			return migration.Trace(err)
		}
		if err := im.ids.Put(idmap.KBCategories, idmap.Key(c.ID), id); err != nil {
			return migration.Trace(err)
		}
		stats.Imported++
		return nil
	}

	pending := categories
	for len(pending) > 0 {
		var next []clientexec.KBCategory
		for _, c := range pending {
			var parent *int64
			if c.ParentID != 0 {
				id, ok := im.ids.LookupInt(idmap.KBCategories, c.ParentID)
				if !ok {
					next = append(next, c)
					continue
				}
				parent = &id
			}
			if err := addCategory(c, parent); err != nil {
				return stats, err
			}
		}
		if len(next) == len(pending) {
			// orphans or cycles: keep them as top level categories
			for _, c := range next {
				if err := addCategory(c, nil); err != nil {
					return stats, err
				}
			}
			break
		}
		pending = next
	}

	articles, err := im.src.KBArticles(ctx)
	if err != nil {
		return stats, migration.Trace(err)
	}
	for _, a := range articles {
		article := blesta.KBArticle{
			CompanyID:   im.opts.CompanyID,
			Access:      convert.KBAccess(a.Access),
			UpVotes:     a.Helpful,
			DownVotes:   a.NotHelpful,
			DateCreated: im.date(a.Created),
			DateUpdated: im.date(a.Modified),
			Lang:        im.opts.Language,
			Title:       convert.DecodeText(a.Title),
			Body:        im.html.HTML(a.Content),
			ContentType: "html",
		}
		if id, ok := im.ids.LookupInt(idmap.KBCategories, a.CategoryID); ok {
			article.CategoryIDs = []int64{id}
		}
		id, err := im.dst.AddKBArticle(ctx, article)
		if err != nil {
			return stats, migration.Trace(err)
		}
		if err := im.ids.Put(idmap.KBArticles, idmap.Key(a.ID), id); err != nil {
			return stats, migration.Trace(err)
		}
		stats.Imported++
	}
	return stats, nil
}
