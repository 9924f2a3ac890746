package stdio

import (
	"context"
	"maps"
	"slices"
)

type envKey struct{}

// Envs returns a map of the environment variables stored in ctx.
// Commands started by Popen receive these in addition to the host
// environment.
func Envs(ctx context.Context) map[string]string {
	if env, ok := ctx.Value(envKey{}).(map[string]string); ok {
		return env
	}
	return nil
}

// WithEnv returns a new context with the provided environment variables
// merged with any existing environment variables in ctx.
func WithEnv(ctx context.Context, env map[string]string) context.Context {
	val := maps.Clone(Envs(ctx))
	if val == nil {
		val = make(map[string]string, len(env))
	}
	maps.Copy(val, env)
	return context.WithValue(ctx, envKey{}, val)
}

// WithoutEnv returns a new context with all environment variables removed.
// This is similar to context.WithoutCancel - it preserves all other values
// in the context (working directory, deadlines, etc.) while clearing only
// the environment variables.
func WithoutEnv(ctx context.Context) context.Context {
	if Envs(ctx) == nil {
		return ctx
	}
	return context.WithValue(ctx, envKey{}, nil)
}

// UnsetEnv returns a new context with the named environment variable removed.
func UnsetEnv(ctx context.Context, name string) context.Context {
	env := Envs(ctx)
	if env == nil {
		return ctx
	}
	val := maps.Clone(env)
	delete(val, name)
	if len(val) < 1 {
		val = nil
	}
	return context.WithValue(ctx, envKey{}, val)
}

// Environ returns base, a list of "key=value" pairs such as os.Environ(),
// overlaid with Envs(ctx). It is intended for System implementations.
func Environ(ctx context.Context, base []string) []string {
	env := Envs(ctx)
	if len(env) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(env))
	for _, kv := range base {
		k := envKeyOf(kv)
		if _, ok := env[k]; !ok {
			out = append(out, kv)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(env)) {
		out = append(out, k+"="+env[k])
	}
	return out
}

func envKeyOf(kv string) string {
	// Windows keeps per-drive variables such as "=C:=C:\dir".
	for i := 1; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i]
		}
	}
	return kv
}
