package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

const (
	usersTable      = "users"
	ticketsTable    = "tickets"
	commentsTable   = "comments"
	activitiesTable = "activities"
	articlesTable   = "articles"
	feedbackTable   = "article_feedbacks"
)

const textSize = 2147483647

// MySQL's plain timestamp drops sub-second precision and stops at 2038.
var timeType = map[string]string{dialect.MySQL: "datetime(6)"}

var (
	usersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "username", Type: field.TypeString, Unique: true},
		{Name: "password", Type: field.TypeString},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "role", Type: field.TypeEnum, Enums: domain.Strings(authorize.Roles), Default: string(authorize.RoleCustomer)},
		{Name: "avatar_url", Type: field.TypeString, Nullable: true, Size: textSize},
	}
	usersSchema = &schema.Table{
		Name:       usersTable,
		Columns:    usersColumns,
		PrimaryKey: []*schema.Column{usersColumns[0]},
	}

	ticketsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "subject", Type: field.TypeString, Size: textSize},
		{Name: "description", Type: field.TypeString, Size: textSize},
		{Name: "status", Type: field.TypeEnum, Enums: domain.Strings(domain.TicketStatuses), Default: string(domain.StatusOpen)},
		{Name: "priority", Type: field.TypeEnum, Enums: domain.Strings(domain.TicketPriorities), Default: string(domain.PriorityMedium)},
		{Name: "category", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "updated_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "created_by_id", Type: field.TypeInt},
		{Name: "assigned_to_id", Type: field.TypeInt, Nullable: true},
	}
	ticketsSchema = &schema.Table{
		Name:       ticketsTable,
		Columns:    ticketsColumns,
		PrimaryKey: []*schema.Column{ticketsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tickets_users_created_by",
				Columns:    []*schema.Column{ticketsColumns[8]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "tickets_users_assigned_to",
				Columns:    []*schema.Column{ticketsColumns[9]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{Name: "ticket_status", Columns: []*schema.Column{ticketsColumns[3]}},
			{Name: "ticket_created_at", Columns: []*schema.Column{ticketsColumns[6]}},
		},
	}

	commentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "content", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "ticket_id", Type: field.TypeInt},
		{Name: "user_id", Type: field.TypeInt},
	}
	commentsSchema = &schema.Table{
		Name:       commentsTable,
		Columns:    commentsColumns,
		PrimaryKey: []*schema.Column{commentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "comments_tickets_comments",
				Columns:    []*schema.Column{commentsColumns[3]},
				RefColumns: []*schema.Column{ticketsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "comments_users_comments",
				Columns:    []*schema.Column{commentsColumns[4]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "comment_ticket_id", Columns: []*schema.Column{commentsColumns[3]}},
		},
	}

	activitiesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "type", Type: field.TypeEnum, Enums: domain.Strings(domain.ActivityTypes)},
		{Name: "message", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "ticket_id", Type: field.TypeInt, Nullable: true},
		{Name: "user_id", Type: field.TypeInt},
	}
	activitiesSchema = &schema.Table{
		Name:       activitiesTable,
		Columns:    activitiesColumns,
		PrimaryKey: []*schema.Column{activitiesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "activities_tickets_activities",
				Columns:    []*schema.Column{activitiesColumns[4]},
				RefColumns: []*schema.Column{ticketsColumns[0]},
				OnDelete:   schema.SetNull,
			},
			{
				Symbol:     "activities_users_activities",
				Columns:    []*schema.Column{activitiesColumns[5]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "activity_created_at", Columns: []*schema.Column{activitiesColumns[3]}},
		},
	}

	articlesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString, Size: textSize},
		{Name: "content", Type: field.TypeString, Size: textSize},
		{Name: "category", Type: field.TypeString},
		{Name: "status", Type: field.TypeEnum, Enums: domain.Strings(domain.ArticleStatuses), Default: string(domain.ArticleDraft)},
		{Name: "view_count", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "updated_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "published_at", Type: field.TypeTime, Nullable: true, SchemaType: timeType},
		{Name: "author_id", Type: field.TypeInt},
	}
	articlesSchema = &schema.Table{
		Name:       articlesTable,
		Columns:    articlesColumns,
		PrimaryKey: []*schema.Column{articlesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "articles_users_articles",
				Columns:    []*schema.Column{articlesColumns[9]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "article_status_category", Columns: []*schema.Column{articlesColumns[4], articlesColumns[3]}},
		},
	}

	feedbackColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "helpful", Type: field.TypeBool},
		{Name: "comment", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "created_at", Type: field.TypeTime, SchemaType: timeType},
		{Name: "article_id", Type: field.TypeInt},
		{Name: "user_id", Type: field.TypeInt, Nullable: true},
	}
	feedbackSchema = &schema.Table{
		Name:       feedbackTable,
		Columns:    feedbackColumns,
		PrimaryKey: []*schema.Column{feedbackColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "article_feedbacks_articles_feedback",
				Columns:    []*schema.Column{feedbackColumns[4]},
				RefColumns: []*schema.Column{articlesColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "article_feedbacks_users_feedback",
				Columns:    []*schema.Column{feedbackColumns[5]},
				RefColumns: []*schema.Column{usersColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	// Tables lists every table in dependency order.
	Tables = []*schema.Table{
		usersSchema,
		ticketsSchema,
		commentsSchema,
		activitiesSchema,
		articlesSchema,
		feedbackSchema,
	}
)

func init() {
	ticketsSchema.ForeignKeys[0].RefTable = usersSchema
	ticketsSchema.ForeignKeys[1].RefTable = usersSchema
	commentsSchema.ForeignKeys[0].RefTable = ticketsSchema
	commentsSchema.ForeignKeys[1].RefTable = usersSchema
	activitiesSchema.ForeignKeys[0].RefTable = ticketsSchema
	activitiesSchema.ForeignKeys[1].RefTable = usersSchema
	articlesSchema.ForeignKeys[0].RefTable = usersSchema
	feedbackSchema.ForeignKeys[0].RefTable = articlesSchema
	feedbackSchema.ForeignKeys[1].RefTable = usersSchema
}

// Migrate creates or upgrades every table through ent's schema migrator.
func Migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("store: new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}
