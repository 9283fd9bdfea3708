/*
Package todosdk is a Go client for the todos GraphQL service.

# SDKClient vs Session

  - SDKClient talks to the public endpoints and starts sessions.
  - Session carries an access/refresh token pair and refreshes it on demand.

	client := todosdk.NewSDKClient("http://localhost:8000")

	health, err := client.GetLiveness(ctx)

	session, err := client.Login(ctx, "alice@example.com", "Passw0rd!")
	todo, err := session.CreateTodo(ctx, todosdk.CreateTodoInput{Title: "ship it"})

# Errors

GraphQL errors come back as *GraphQLError with the server's extensions.code,
so callers can branch on it:

	var gqlErr *todosdk.GraphQLError
	if errors.As(err, &gqlErr) && gqlErr.Code == todosdk.CodeForbidden {
		// not allowed
	}

Non-GraphQL endpoints return *HTTPError.

# Thread Safety

Sessions are safe for concurrent use. Token refresh is serialised behind a
mutex, so concurrent callers never rotate the same refresh token twice.
*/
package todosdk
