package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	appmw "github.com/worklane/worklane/internal/middleware"

	"github.com/worklane/worklane/internal/admin"
	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/auth"
	"github.com/worklane/worklane/internal/billing"
	"github.com/worklane/worklane/internal/db"
	"github.com/worklane/worklane/internal/disputes"
	"github.com/worklane/worklane/internal/kyc"
	"github.com/worklane/worklane/internal/messaging"
	"github.com/worklane/worklane/internal/payments"
	"github.com/worklane/worklane/internal/projects"
	"github.com/worklane/worklane/internal/proposals"
	"github.com/worklane/worklane/internal/requests"
	"github.com/worklane/worklane/internal/reviews"
	"github.com/worklane/worklane/internal/uploads"
	"github.com/worklane/worklane/internal/user"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Init subsystems
	db.Init()
	alerts.Init()
	defer alerts.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = &requestValidator{validate: validator.New()}

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// Public auth routes
	e.POST("/signup", auth.Signup)
	e.POST("/login", auth.Login)
	e.POST("/password-reset/request", auth.RequestPasswordReset)
	e.POST("/password-reset/confirm", auth.ResetPassword)

	// Public discovery
	e.GET("/providers/:id", user.GetPublicProviderProfile)
	e.GET("/providers/:id/reviews", reviews.GetProviderReviews)

	// Signed file downloads (signature is the auth)
	e.GET("/files/*", uploads.Download)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWTMiddleware)

	// Me and profile
	g.GET("/me", auth.Me)
	g.GET("/profile", user.GetMyProfile)
	g.PATCH("/profile", user.UpdateProfile)

	// Provider showcase
	g.POST("/profile/certifications", user.AddCertification, appmw.RequireRoles("provider"))
	g.DELETE("/profile/certifications/:id", user.DeleteCertification, appmw.RequireRoles("provider"))
	g.POST("/profile/portfolio", user.AddPortfolioItem, appmw.RequireRoles("provider"))
	g.DELETE("/profile/portfolio/:id", user.DeletePortfolioItem, appmw.RequireRoles("provider"))

	// Wallet
	g.GET("/wallet/balance", payments.Balance)
	g.POST("/wallet/topups/init", payments.TopupInit)
	g.POST("/wallet/topups/:id/confirm", payments.TopupConfirm)
	g.POST("/wallet/withdraw", payments.Withdraw)
	g.GET("/wallet/transactions", payments.Transactions)

	// Service requests (customer side)
	g.POST("/requests", requests.CreateRequest, appmw.RequireRoles("customer"))
	g.GET("/requests", requests.GetCompanyRequests, appmw.RequireRoles("customer"))
	g.GET("/requests/:id", requests.GetRequest)
	g.PATCH("/requests/:id", requests.UpdateRequest, appmw.RequireRoles("customer"))
	g.POST("/requests/:id/cancel", requests.CancelRequest, appmw.RequireRoles("customer"))

	// Opportunity discovery (provider side)
	g.GET("/opportunities", requests.GetOpportunities, appmw.RequireRoles("provider"))

	// Proposals
	g.POST("/requests/:id/proposals", proposals.SendProposal, appmw.RequireRoles("provider"))
	g.GET("/proposals", proposals.GetProviderProposals, appmw.RequireRoles("provider"))
	g.POST("/proposals/:id/withdraw", proposals.WithdrawProposal, appmw.RequireRoles("provider"))
	g.GET("/requests/:id/proposals", proposals.GetRequestProposals, appmw.RequireRoles("customer"))
	g.GET("/proposals/:id", proposals.GetProposal)
	g.POST("/proposals/:id/accept", proposals.AcceptProposal, appmw.RequireRoles("customer"))
	g.POST("/proposals/:id/decline", proposals.DeclineProposal, appmw.RequireRoles("customer"))

	// Projects and milestone plans
	g.GET("/projects", projects.GetCompanyProjects, appmw.RequireRoles("customer"))
	g.GET("/projects/mine", projects.GetProviderProjects, appmw.RequireRoles("provider"))
	g.GET("/projects/:id", projects.GetProject)
	g.PUT("/projects/:id/milestones", projects.ReplaceMilestonePlan, appmw.RequireRoles("customer"))
	g.POST("/projects/:id/milestones/approve", projects.ApproveMilestonePlan)

	// Milestone progress
	g.POST("/milestones/:id/start", projects.StartMilestone, appmw.RequireRoles("provider"))
	g.POST("/milestones/:id/submit", projects.SubmitMilestone, appmw.RequireRoles("provider"))
	g.POST("/milestones/:id/approve", projects.ApproveMilestone, appmw.RequireRoles("customer"))
	g.POST("/milestones/:id/reject", projects.RejectMilestone, appmw.RequireRoles("customer"))
	g.POST("/milestones/:id/restart", projects.RestartMilestone, appmw.RequireRoles("provider"))

	// Milestone escrow funding
	g.POST("/milestones/:id/payments/init", payments.InitMilestonePayment, appmw.RequireRoles("customer"))
	g.POST("/payments/:id/confirm", payments.ConfirmMilestonePayment, appmw.RequireRoles("customer"))
	g.GET("/projects/:id/payments", payments.ProjectPayments)

	// Disputes
	g.POST("/projects/:id/disputes", disputes.OpenDispute)
	g.GET("/projects/:id/disputes", disputes.GetProjectDisputes)

	// Reviews
	g.POST("/projects/:id/review", reviews.CreateReview, appmw.RequireRoles("customer"))
	g.GET("/projects/:id/review", reviews.GetProjectReview)
	g.POST("/reviews/:id/reply", reviews.ReplyToReview, appmw.RequireRoles("provider"))

	// Messaging
	g.POST("/projects/:id/messages", messaging.SendMessage)
	g.GET("/projects/:id/messages", messaging.ListMessages)
	g.GET("/projects/:id/messages/unread", messaging.UnreadCount)
	g.POST("/projects/:id/messages/:message_id/read", messaging.MarkMessageRead)
	g.GET("/projects/:id/ws", messaging.ProjectWS)

	// Notifications
	g.GET("/notifications", alerts.ListNotifications)
	g.POST("/notifications/:id/read", alerts.MarkNotificationRead)
	g.POST("/notifications/read-all", alerts.MarkAllNotificationsRead)

	// Billing
	g.GET("/billing/spend", billing.CompanySpend, appmw.RequireRoles("customer"))
	g.GET("/billing/earnings", billing.ProviderEarnings, appmw.RequireRoles("provider"))
	g.GET("/billing/invoices", billing.ListInvoices)
	g.GET("/billing/invoices/:id", billing.GetInvoice)

	// KYC
	g.POST("/kyc/documents", kyc.UploadDocument)
	g.GET("/kyc/documents", kyc.MyDocuments)

	// Uploads
	g.POST("/uploads/:category", uploads.Upload)
	g.GET("/uploads/sign", uploads.Sign)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWTMiddleware)
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)
	adminGroup.GET("/projects", admin.ListProjects)
	adminGroup.GET("/payments", admin.ListPayments)
	adminGroup.GET("/revenue", admin.RevenueReport)
	adminGroup.GET("/disputes", disputes.ListDisputes)
	adminGroup.GET("/disputes/:id", disputes.GetDispute)
	adminGroup.POST("/disputes/:id/review", disputes.ReviewDispute)
	adminGroup.POST("/disputes/:id/resolve", disputes.ResolveDispute)
	adminGroup.POST("/disputes/:id/redo", disputes.RedoDispute)
	adminGroup.POST("/disputes/:id/payout", disputes.PayoutDispute)
	adminGroup.GET("/kyc", kyc.ListDocuments)
	adminGroup.POST("/kyc/:id/review", kyc.ReviewDocument)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
