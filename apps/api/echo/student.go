package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/batch"
	"github.com/tutorbase/backend/core/student"
	"github.com/tutorbase/backend/core/user"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", jwt, authn, requireRoles(user.RoleAdmin))
	sg.POST("/create", api.create)
	sg.GET("/batch/:batchId", api.byBatch)
	sg.GET("/:id", api.retrieve)
	sg.DELETE("/:studentId/batch/:batchId", api.removeFromBatch)
}

func (api *studentApi) checkUUIDParam(ctx echo.Context, name string) (string, error) {
	val := ctx.Param(name)
	if err := api.deps.Validate.Var(val, "required,uuid4"); err != nil {
		return "", core.NewValidationError(errors.New("invalid "+name),
			core.FieldError{Field: name, Error: "invalid " + name})
	}
	return val, nil
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	s, err := api.deps.StudentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

// retrieve reads through the cache; the payload names its provenance.
func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := api.checkUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	s, source, err := api.deps.StudentSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"student": s,
		"source":  source,
	})
}

func (api *studentApi) byBatch(ctx echo.Context) error {
	batchID, err := api.checkUUIDParam(ctx, "batchId")
	if err != nil {
		return err
	}

	b, students, source, err := api.deps.StudentSvc.ByBatch(ctx.Request().Context(), batchID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, batchStudentsResponse{
		Batch:    b,
		Students: students,
		Count:    len(students),
		Source:   source,
	})
}

func (api *studentApi) removeFromBatch(ctx echo.Context) error {
	studentID, err := api.checkUUIDParam(ctx, "studentId")
	if err != nil {
		return err
	}
	batchID, err := api.checkUUIDParam(ctx, "batchId")
	if err != nil {
		return err
	}

	s, err := api.deps.StudentSvc.RemoveFromBatch(ctx.Request().Context(), studentID, batchID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "student removed from batch successfully",
		"student": s,
	})
}

type batchStudentsResponse struct {
	Batch    batch.Batch       `json:"batch"`
	Students []student.Student `json:"students"`
	Count    int               `json:"count"`
	Source   string            `json:"source"`
}
