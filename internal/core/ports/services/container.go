package services

// ServiceContainer bundles the service facades handed to the HTTP layer.
type ServiceContainer struct {
	User        UserSvcFacade
	Token       TokenSvcFacade
	GoogleOAuth GoogleOAuthSvcFacade
	Job         JobSvcFacade
	Deal        DealSvcFacade
	Review      ReviewSvcFacade
	Chat        ChatSvcFacade
}
