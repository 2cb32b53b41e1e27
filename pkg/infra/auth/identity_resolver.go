package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/bazaarly/backbone/pkg/domain/identity"
	"github.com/bazaarly/backbone/pkg/infra/auth/jwt"
	"github.com/sirupsen/logrus"
)

const bearerPrefix = "bearer "

type IdentityResolver interface {
	// Resolve maps an Authorization header value and client address to a caller.
	Resolve(authorization, remoteAddr string) identity.Caller
}

type identityResolver struct {
	logger        *logrus.Logger
	jwtManager    jwt.Manager
	serviceSecret []byte
	serviceName   string
}

func NewIdentityResolver(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
	serviceSecret string,
	serviceName string,
) IdentityResolver {
	if serviceName == "" {
		serviceName = "internal"
	}
	return &identityResolver{
		logger:        logger,
		jwtManager:    jwtManager,
		serviceSecret: []byte(serviceSecret),
		serviceName:   serviceName,
	}
}

func (r *identityResolver) Resolve(authorization, remoteAddr string) identity.Caller {
	anonymous := identity.Anonymous{Address: remoteAddr}

	token, ok := bearerToken(authorization)
	if !ok {
		return anonymous
	}
	if len(r.serviceSecret) > 0 && subtle.ConstantTimeCompare([]byte(token), r.serviceSecret) == 1 {
		return identity.ServiceCaller{Name: r.serviceName}
	}
	if r.jwtManager == nil {
		return anonymous
	}

	claims, err := r.jwtManager.DecodeToken(token)
	if err != nil {
		r.logger.WithError(err).Debug("bearer token rejected, treating caller as anonymous")
		return anonymous
	}
	return identity.AuthenticatedUser{Identifier: claims.UserID, Roles: claims.Roles}
}

func bearerToken(authorization string) (string, bool) {
	authorization = strings.TrimSpace(authorization)
	if len(authorization) <= len(bearerPrefix) || !strings.EqualFold(authorization[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(bearerPrefix):])
	return token, token != ""
}
