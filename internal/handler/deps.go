package handler

import (
	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/registry"
	"chatrelay/internal/configs"
)

// AppDeps bundles the shared dependencies handed to every HTTP handler.
type AppDeps struct {
	Registry *registry.Registry
	Hub      *chat.Hub
	Config   *configs.AppConfig
}
