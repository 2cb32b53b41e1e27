package server

import (
	"fmt"

	"github.com/bazaarly/backbone/pkg/config"
	"github.com/bazaarly/backbone/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	APIServer struct {
		*BaseServer
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	s := &APIServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.setupAdminHealthCheck()
	s.WithRouters(di.Routers...)
	return s
}

func (s *APIServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}
