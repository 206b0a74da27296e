// ABOUTME: MCP server subcommand
// ABOUTME: Serves cadence tools, resources, and prompts over stdio for AI assistants
package cli

import (
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/commtrack/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("starting MCP server", zap.String("version", a.version))

			server := newMCPServer(a.db, a.session(), a.now, a.version)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}
}

// newMCPServer registers every tool, resource, and prompt against database.
func newMCPServer(database *sql.DB, current handlers.CurrentUser, now func() time.Time, version string) *mcp.Server {
	companyHandlers := handlers.NewCompanyHandlers(database, current, now)
	communicationHandlers := handlers.NewCommunicationHandlers(database, now)
	notificationHandlers := handlers.NewNotificationHandlers(database, now)
	reportHandlers := handlers.NewReportHandlers(database, now)
	vizHandlers := handlers.NewVizHandlers(database, now)
	resourceHandlers := handlers.NewResourceHandlers(database, now)
	promptHandlers := handlers.NewPromptHandlers(database, now)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "commtrack",
		Version: version,
	}, nil)

	// Register tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_companies",
		Description: "List companies with their communication status (overdue, due, upcoming, none), optionally filtered by name or status",
	}, companyHandlers.ListCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "company_status",
		Description: "Show one company's details, last communication, next expected date, and recent history",
	}, companyHandlers.CompanyStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_company",
		Description: "Add a company to track. Requires an administrator to be logged in",
	}, companyHandlers.AddCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_communication",
		Description: "Log a communication (LinkedIn Post, LinkedIn Message, Email, Phone Call, Other) with one or more companies",
	}, communicationHandlers.LogCommunication)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notifications",
		Description: "List overdue and due-today reminders, re-synced against the current date",
	}, notificationHandlers.ListNotifications)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_notification_read",
		Description: "Mark one notification, or all of them, as read",
	}, notificationHandlers.MarkNotificationRead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "monthly_report",
		Description: "Summarize a month of communications by type and company, optionally as CSV",
	}, reportHandlers.MonthlyReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cadence_graph",
		Description: "Generate a Graphviz DOT graph of companies grouped by communication status",
	}, vizHandlers.CadenceGraph)

	// Register resources
	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(resourceHandlers.CompanyTemplate(), resourceHandlers.ReadResource)

	// Register prompts
	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

