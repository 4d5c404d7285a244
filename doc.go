/*
Package visio translates agent-friendly diagram commands into calls against a
privileged Visio automation host, tracking shape identities per session so
callers can keep referring to shapes by small stable integers.

It sits between untrusted, loosely-typed callers (AI agents speaking MCP or
plain JSON over HTTP) and a host process that owns the actual Visio COM
automation. The bridge validates and canonicalizes everything it can locally,
so malformed requests fail fast without a host round trip, and resolves fuzzy
template, stencil and master names through fallback ladders so "rectangle"
just works.

# Concept

The Bridge is the composition root. Each conversation gets a Session holding a
shape Registry: when a shape is added, the host's volatile shape ID (such as
"Sheet.3") is mapped to a small caller ID (1, 2, 3...) that stays valid for
the whole session even as the host renumbers. Operations flow through a
Translator (loose maps in, canonical operations out), a Resolver (fallback
ladders for templates, stencils and masters) and a relay Dispatcher
(per-document serialization, timeouts, read retries) before reaching the
Executor port.

This hexagonal layout keeps the core decoupled from adapters: the same Bridge
serves MCP over stdio or SSE, a chi HTTP surface mirroring the host's own API,
and the CLI.

# Usage

	bridge, err := visio.New(
		visio.WithExecutor(httpexec.New("http://localhost:8051")),
	)
	if err != nil {
		log.Fatal(err)
	}

	ses := bridge.NewSession()
	defer ses.Close(context.Background())

	payload, err := bridge.ExecuteModify(ctx, ses, map[string]any{
		"operation": "add_shape",
		"shape_data": map[string]any{
			"master_name": "rectangle",
			"fill_color":  "red",
			"text":        "Start",
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	if id, ok := bridge.CallerID(ses, payload); ok {
		fmt.Println("created shape", id)
	}

Sessions survive process restarts when a registry store is configured, with
Redis for multi-instance deployments:

	store := redis.New("localhost:6379", "", 0)
	bridge, err := visio.New(
		visio.WithExecutor(exec),
		visio.WithRegistryStore(store),
	)
	ses, err := bridge.ResumeSession(ctx, sessionID)
*/
package visio
