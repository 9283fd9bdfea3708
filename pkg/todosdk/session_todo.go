package todosdk

import "context"

const todoFields = `id title description priority status dueDate ownerId isCompleted completedAt isOverdue createdAt updatedAt deletedAt deletedById deleteReason isDeleted`

// CreateTodo creates a todo owned by the session's user.
func (s *Session) CreateTodo(ctx context.Context, in CreateTodoInput) (*Todo, error) {
	var out struct {
		CreateTodo Todo `json:"createTodo"`
	}
	err := s.Query(ctx, `mutation($input: CreateTodoInput!) { createTodo(input: $input) { `+todoFields+` } }`,
		map[string]any{"input": in}, &out)
	if err != nil {
		return nil, err
	}
	return &out.CreateTodo, nil
}

// GetTodo returns a todo, or nil when it is not visible.
func (s *Session) GetTodo(ctx context.Context, id string) (*Todo, error) {
	var out struct {
		Todo *Todo `json:"todo"`
	}
	if err := s.Query(ctx, `query($id: ID!) { todo(id: $id) { `+todoFields+` } }`, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	return out.Todo, nil
}

// ListTodos lists the todos visible to the session's user.
func (s *Session) ListTodos(ctx context.Context, filter TodoFilter) ([]Todo, error) {
	var out struct {
		Todos []Todo `json:"todos"`
	}
	err := s.Query(ctx, `query($filter: TodoFilter) { todos(filter: $filter) { `+todoFields+` } }`,
		map[string]any{"filter": filter}, &out)
	if err != nil {
		return nil, err
	}
	return out.Todos, nil
}

// CompleteTodo marks a todo as completed.
func (s *Session) CompleteTodo(ctx context.Context, id string) (*Todo, error) {
	var out struct {
		CompleteTodo Todo `json:"completeTodo"`
	}
	if err := s.Query(ctx, `mutation($id: ID!) { completeTodo(id: $id) { `+todoFields+` } }`, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	return &out.CompleteTodo, nil
}

// DeleteTodo deletes a todo. mode is SOFT or HARD; reason is optional.
func (s *Session) DeleteTodo(ctx context.Context, id, mode string, reason *string) error {
	return s.Query(ctx, `mutation($id: ID!, $mode: DeleteMode, $reason: String) { deleteTodo(id: $id, mode: $mode, reason: $reason) }`,
		map[string]any{"id": id, "mode": enumOrNil(mode), "reason": reason}, nil)
}
