package services

import (
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/platform/config"
)

// NewContainer creates the service container with properly initialized
// dependencies.
func NewContainer(repos *portsrepo.RepositoryProvider, cfg *config.Config) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		User:        NewUserService(repos.UserRepo),
		Token:       NewTokenService(repos.UserRepo, cfg),
		GoogleOAuth: NewGoogleOAuthService(cfg),
		Job:         NewJobService(repos.JobRepo),
		Deal:        NewDealService(repos.DealRepo, repos.AttendanceRepo, repos.JobRepo, cfg.InferSingleSkill),
		Review:      NewReviewService(repos.ReviewRepo, repos.DealRepo, repos.UserRepo),
		Chat:        NewChatService(repos.MessageRepo, repos.DealRepo),
	}
}
