package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/batch"
	"github.com/tutorbase/backend/core/user"
)

type batchApi struct {
	deps ServerDeps
}

func registerBatchAPI(g *echo.Group, jwt, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := batchApi{deps: deps}
	admin := requireRoles(user.RoleAdmin)

	bg := g.Group("/batches", jwt, authn)
	bg.POST("/create", api.create, admin)
	bg.GET("/getbatches", api.query, admin)
	bg.GET("/teacher/:id/batches", api.byTeacher)
	bg.GET("/:id", api.retrieve, admin)
	bg.PUT("/:id", api.update, admin)
	bg.DELETE("/:id", api.destroy, admin)
}

func (api *batchApi) create(ctx echo.Context) error {
	var data batch.NewBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBatch")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	b, err := api.deps.BatchSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating batch")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *batchApi) query(ctx echo.Context) error {
	var filter batch.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	batches, total, err := api.deps.BatchSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying batches")
	}
	filter.Normalize()
	return ctx.JSON(http.StatusOK, PageResponse{
		Data:  batches,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (api *batchApi) byTeacher(ctx echo.Context) error {
	teacherID := ctx.Param("id")
	if err := api.deps.Validate.Var(teacherID, "required,uuid4"); err != nil {
		return core.NewValidationError(errors.New("invalid teacher id"),
			core.FieldError{Field: "id", Error: "invalid teacher id"})
	}

	var filter batch.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	batches, total, err := api.deps.BatchSvc.ByTeacher(ctx.Request().Context(), teacherID, filter.Page, filter.Limit)
	if err != nil {
		return errors.Wrap(err, "querying teacher batches")
	}
	filter.Normalize()
	return ctx.JSON(http.StatusOK, PageResponse{
		Data:  batches,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

func (api *batchApi) retrieve(ctx echo.Context) error {
	b, err := api.deps.BatchSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) update(ctx echo.Context) error {
	var data batch.UpdateBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBatch")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	b, err := api.deps.BatchSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *batchApi) destroy(ctx echo.Context) error {
	if err := api.deps.BatchSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "batch deleted successfully"})
}
