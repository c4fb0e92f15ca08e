// Package api is the request boundary: it maps an operation name, its named
// arguments and the authenticated actor onto the services, and turns the
// outcome into a payload or a kinded error. Transports sit in front of it.
package api

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/oggyb/swipematch/internal/app"
	"github.com/oggyb/swipematch/internal/db"
	svcErr "github.com/oggyb/swipematch/internal/errors"
	"github.com/oggyb/swipematch/internal/logger"
	"github.com/oggyb/swipematch/internal/service/admin"
	"github.com/oggyb/swipematch/internal/service/auth"
	"github.com/oggyb/swipematch/internal/service/candidates"
	"github.com/oggyb/swipematch/internal/service/matching"
	"github.com/oggyb/swipematch/internal/service/messaging"
	"github.com/oggyb/swipematch/internal/service/profile"
)

// Request is one call. Actor is nil for anonymous callers.
type Request struct {
	Operation string
	Args      Args
	Actor     *db.User
}

// Error is the structured failure returned to callers.
type Error struct {
	Kind    svcErr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Response carries either Data or Error.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

type handlerFunc func(ctx context.Context, req Request) (any, error)

type operation struct {
	// public operations run without an actor
	public bool
	run    handlerFunc
}

// Dispatcher routes requests to the services.
type Dispatcher struct {
	appCtx     *app.AppContext
	auth       *auth.Service
	profile    *profile.Service
	candidates *candidates.Selector
	matching   *matching.Service
	messaging  *messaging.Service
	admin      *admin.Service
	ops        map[string]operation
}

// NewDispatcher wires every service from appCtx.
func NewDispatcher(appCtx *app.AppContext) *Dispatcher {
	d := &Dispatcher{
		appCtx:     appCtx,
		auth:       auth.NewService(appCtx),
		profile:    profile.NewService(appCtx),
		candidates: candidates.NewSelector(appCtx),
		matching:   matching.NewService(appCtx),
		messaging:  messaging.NewService(appCtx),
		admin:      admin.NewService(appCtx),
	}
	d.ops = map[string]operation{
		"registerUser": {public: true, run: d.registerUser},
		"loginUser":    {public: true, run: d.loginUser},
		"currentUser":  {public: true, run: d.currentUser},

		"user":            {run: d.user},
		"updateProfile":   {run: d.updateProfile},
		"uploadPhoto":     {run: d.uploadPhoto},
		"deletePhoto":     {run: d.deletePhoto},
		"setPrimaryPhoto": {run: d.setPrimaryPhoto},

		"potentialUsers": {run: d.potentialUsers},
		"likeUser":       {run: d.likeUser},
		"dislikeUser":    {run: d.dislikeUser},
		"matches":        {run: d.matches},
		"unmatchUser":    {run: d.unmatchUser},
		"likedYou":       {run: d.likedYou},
		"countLikedYou":  {run: d.countLikedYou},

		"sendMessage":   {run: d.sendMessage},
		"conversations": {run: d.conversations},
		"messages":      {run: d.messages},

		"adminDashboard":   {run: d.adminDashboard},
		"adminUsers":       {run: d.adminUsers},
		"adminCreateUser":  {run: d.adminCreateUser},
		"adminUpdateUser":  {run: d.adminUpdateUser},
		"adminDeleteUser":  {run: d.adminDeleteUser},
		"adminDeleteMatch": {run: d.adminDeleteMatch},
	}
	return d
}

// Operations lists the known operation names, sorted.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.ops))
	for name := range d.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Authenticate resolves a bearer token to the actor for a Request.
func (d *Dispatcher) Authenticate(ctx context.Context, token string) (*db.User, error) {
	return d.auth.Authenticate(ctx, token)
}

// Execute runs one operation and never returns a Go error: failures come
// back as Response.Error.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (resp Response) {
	log := logger.FromContext(ctx, d.appCtx.Logger).With("operation", req.Operation)
	if req.Actor != nil {
		log = log.With("actor", req.Actor.ID)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("operation panicked", "panic", r)
			resp = failure(svcErr.Internal(fmt.Errorf("panic: %v", r)))
		}
	}()

	op, ok := d.ops[req.Operation]
	if !ok {
		return failure(svcErr.InvalidOperation("unknown operation: " + req.Operation))
	}
	if !op.public && req.Actor == nil {
		return failure(svcErr.Unauthorized("authentication required"))
	}
	if req.Args == nil {
		req.Args = Args{}
	}

	data, err := op.run(ctx, req)
	if err != nil {
		err = svcErr.Map(err)
		if svcErr.KindOf(err) == svcErr.KindInternal {
			log.Error("operation failed", "err", err)
		} else {
			log.Debug("operation rejected", "kind", svcErr.KindOf(err), "err", err)
		}
		return failure(err)
	}
	return Response{Data: data}
}

func failure(err error) Response {
	return Response{Error: &Error{Kind: svcErr.KindOf(err), Message: svcErr.MessageOf(err)}}
}

func isNotFound(err error) bool {
	return errors.Is(err, svcErr.ErrNotFound)
}
