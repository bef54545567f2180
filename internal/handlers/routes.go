package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/middleware"
)

// Register mounts every API route on v1
func (h *Handlers) Register(v1 *gin.RouterGroup, jwtSecret string) {
	// Public
	v1.GET("/health", h.Health.Index)
	v1.GET("/clauses", h.Clause.List)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/auth/register", h.Auth.Register)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret))
	{
		protected.POST("/auth/logout", h.Auth.Logout)
		protected.PATCH("/auth/password", h.Auth.ChangePassword)

		sess := protected.Group("/session")
		{
			sess.GET("", h.Session.Get)
			sess.PUT("/company", h.Session.SetCompany)

			sess.POST("/participants", h.Session.AddParticipant)
			sess.PUT("/participants/:index", h.Session.UpdateParticipant)
			sess.DELETE("/participants/:index", h.Session.RemoveParticipant)

			sess.POST("/auditors", h.Session.AddAuditor)
			sess.PUT("/auditors/:index", h.Session.UpdateAuditor)
			sess.DELETE("/auditors/:index", h.Session.RemoveAuditor)

			sess.POST("/frames", h.Session.AddFrame)
			sess.PUT("/frames/:frame_id", h.Session.UpdateFrame)
			sess.POST("/frames/:frame_id/select", h.Session.SelectFrame)
			sess.POST("/frames/:frame_id/panels", h.Session.AddPanel)
			sess.GET("/frames/:frame_id/panels/:panel_id", h.Session.GetPanel)
			sess.POST("/frames/:frame_id/panels/:panel_id/items", h.Session.AddItem)
			sess.DELETE("/frames/:frame_id/panels/:panel_id/items/:index", h.Session.RemoveItem)
		}

		review := protected.Group("/review")
		{
			review.GET("/companies", h.Review.Companies)
			review.GET("/companies/:company/frames", h.Review.Frames)
			review.GET("/companies/:company/frames/:frame_id", h.Review.Frame)
		}

		protected.GET("/reports/export", h.Report.Export)
		protected.GET("/jobs/status", h.Job.Status)
		protected.POST("/jobs/evict-sessions", h.Job.EvictSessions)
	}
}
