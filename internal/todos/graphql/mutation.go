package graphql

import (
	"context"
	"time"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
	"github.com/AD0791/graphql-todos-backend/internal/todos/policy"
	"github.com/AD0791/graphql-todos-backend/internal/todos/service"
	graphqlgo "github.com/graph-gophers/graphql-go"
)

type signupInput struct {
	Email    string
	Password string
	FullName string
}

type createUserInput struct {
	Email    string
	Password string
	FullName string
	Role     *string
	IsActive *bool
}

type updateUserInput struct {
	Email    *string
	FullName *string
	Password *string
}

type createTodoInput struct {
	Title       string
	Description *string
	Priority    *string
	DueDate     *graphqlgo.Time
}

type updateTodoInput struct {
	Title        *string
	Description  *string
	Priority     *string
	Status       *string
	DueDate      *graphqlgo.Time
	ClearDueDate *bool
}

func (r *Resolver) Signup(ctx context.Context, args struct{ Input signupInput }) (*authPayloadResolver, error) {
	res, err := r.TokenService.Signup(ctx, service.SignupInput{
		Email:    args.Input.Email,
		Password: args.Input.Password,
		FullName: args.Input.FullName,
	})
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &authPayloadResolver{root: r, res: res}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authPayloadResolver, error) {
	res, err := r.TokenService.Login(ctx, args.Email, args.Password)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &authPayloadResolver{root: r, res: res}, nil
}

func (r *Resolver) RefreshToken(ctx context.Context, args struct{ RefreshToken string }) (*authPayloadResolver, error) {
	res, err := r.TokenService.Refresh(ctx, args.RefreshToken)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &authPayloadResolver{root: r, res: res}, nil
}

func (r *Resolver) Logout(ctx context.Context, args struct{ RefreshToken string }) (bool, error) {
	ok, err := r.TokenService.Logout(ctx, args.RefreshToken)
	if err != nil {
		return false, mapError(ctx, err)
	}
	return ok, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input createUserInput }) (*userResolver, error) {
	role := domain.RoleUser
	if args.Input.Role != nil {
		var err error
		if role, err = domain.ParseRole(*args.Input.Role); err != nil {
			return nil, badInput(err.Error())
		}
	}

	u, err := r.UserService.Create(ctx, policy.ActorFromContext(ctx), service.CreateUserInput{
		Email:    args.Input.Email,
		Password: args.Input.Password,
		FullName: args.Input.FullName,
		Role:     role,
		IsActive: args.Input.IsActive,
	})
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	ID    graphqlgo.ID
	Input updateUserInput
}) (*userResolver, error) {
	u, err := r.UserService.Update(ctx, policy.ActorFromContext(ctx), string(args.ID), service.UpdateUserInput{
		Email:    args.Input.Email,
		FullName: args.Input.FullName,
		Password: args.Input.Password,
	})
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) SetUserActive(ctx context.Context, args struct {
	ID     graphqlgo.ID
	Active bool
}) (*userResolver, error) {
	u, err := r.UserService.SetActive(ctx, policy.ActorFromContext(ctx), string(args.ID), args.Active)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &userResolver{root: r, u: u}, nil
}

func (r *Resolver) ChangeUserRole(ctx context.Context, args struct {
	ID     graphqlgo.ID
	Role   string
	Reason *string
}) (*roleChangeResolver, error) {
	role, err := domain.ParseRole(args.Role)
	if err != nil {
		return nil, badInput(err.Error())
	}

	c, err := r.UserService.ChangeRole(ctx, policy.ActorFromContext(ctx), string(args.ID), role, args.Reason)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &roleChangeResolver{c: c}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct {
	ID   graphqlgo.ID
	Mode *string
}) (bool, error) {
	mode, err := deleteMode(args.Mode)
	if err != nil {
		return false, err
	}
	if err := r.UserService.Delete(ctx, policy.ActorFromContext(ctx), string(args.ID), mode); err != nil {
		return false, mapError(ctx, err)
	}
	return true, nil
}

func (r *Resolver) CreateTodo(ctx context.Context, args struct{ Input createTodoInput }) (*todoResolver, error) {
	in := service.CreateTodoInput{
		Title:       args.Input.Title,
		Description: args.Input.Description,
		DueDate:     timeOf(args.Input.DueDate),
	}
	if args.Input.Priority != nil {
		p, err := domain.ParsePriority(*args.Input.Priority)
		if err != nil {
			return nil, badInput(err.Error())
		}
		in.Priority = &p
	}

	t, err := r.TodoService.Create(ctx, policy.ActorFromContext(ctx), in)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &todoResolver{root: r, t: t}, nil
}

func (r *Resolver) UpdateTodo(ctx context.Context, args struct {
	ID    graphqlgo.ID
	Input updateTodoInput
}) (*todoResolver, error) {
	in := service.UpdateTodoInput{
		Title:        args.Input.Title,
		Description:  args.Input.Description,
		DueDate:      timeOf(args.Input.DueDate),
		ClearDueDate: deref(args.Input.ClearDueDate),
	}
	if args.Input.Priority != nil {
		p, err := domain.ParsePriority(*args.Input.Priority)
		if err != nil {
			return nil, badInput(err.Error())
		}
		in.Priority = &p
	}
	if args.Input.Status != nil {
		st, err := domain.ParseStatus(*args.Input.Status)
		if err != nil {
			return nil, badInput(err.Error())
		}
		in.Status = &st
	}

	t, err := r.TodoService.Update(ctx, policy.ActorFromContext(ctx), string(args.ID), in)
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &todoResolver{root: r, t: t}, nil
}

func (r *Resolver) CompleteTodo(ctx context.Context, args struct{ ID graphqlgo.ID }) (*todoResolver, error) {
	t, err := r.TodoService.Complete(ctx, policy.ActorFromContext(ctx), string(args.ID))
	if err != nil {
		return nil, mapError(ctx, err)
	}
	return &todoResolver{root: r, t: t}, nil
}

func (r *Resolver) DeleteTodo(ctx context.Context, args struct {
	ID     graphqlgo.ID
	Mode   *string
	Reason *string
}) (bool, error) {
	mode, err := deleteMode(args.Mode)
	if err != nil {
		return false, err
	}
	if err := r.TodoService.Delete(ctx, policy.ActorFromContext(ctx), string(args.ID), mode, args.Reason); err != nil {
		return false, mapError(ctx, err)
	}
	return true, nil
}

// deleteMode defaults to a soft delete.
func deleteMode(s *string) (policy.DeleteMode, error) {
	if s == nil {
		return policy.DeleteSoft, nil
	}
	switch *s {
	case "SOFT":
		return policy.DeleteSoft, nil
	case "HARD":
		return policy.DeleteHard, nil
	}
	return 0, badInput("unknown delete mode " + *s)
}

func timeOf(t *graphqlgo.Time) *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}
