package pvr

// WithSession runs fn with a transient environment and session, and
// guarantees both are released on every return path, including when fn
// or any setup step fails. Release errors are reported only when fn
// itself succeeded.
func WithSession(svc Service, fn func(Session) error) (err error) {
	env, err := svc.Init()
	if err != nil {
		return err
	}
	defer func() {
		if serr := svc.Shutdown(env); serr != nil && err == nil {
			err = serr
		}
	}()

	sess, err := svc.CreateSession(env)
	if err != nil {
		return err
	}
	defer func() {
		if derr := svc.DestroySession(sess); derr != nil && err == nil {
			err = derr
		}
	}()

	return fn(sess)
}
