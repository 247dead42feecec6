// Package reqctx carries request-scoped values through context.Context:
// the HTTP request record and, once a session resolved, the caller.
//
//	ctx = reqctx.WithRequest(ctx, reqctx.Request{ID: id})
//	ctx = reqctx.WithAuth(ctx, reqctx.AuthContext{UserID: u.ID, Role: u.Role})
//
// Services take AuthContext as an explicit argument; the context copy only
// feeds logging.
package reqctx
