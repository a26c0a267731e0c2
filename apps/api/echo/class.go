package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/class"
	"github.com/tutorbase/backend/core/user"
)

type classApi struct {
	deps ServerDeps
}

func registerClassAPI(g *echo.Group, jwt, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := classApi{deps: deps}
	admin := requireRoles(user.RoleAdmin)

	cg := g.Group("/classes", jwt, authn)
	cg.POST("/create", api.create, admin)
	cg.GET("/batch/:batchId", api.byBatch)
	cg.GET("/teacher/:teacherId", api.byTeacher)
	cg.GET("/upcoming", api.upcoming)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update, admin)
	cg.DELETE("/:id", api.destroy, admin)
	cg.POST("/:classId/attendance", api.markAttendance)
	cg.POST("/:classId/materials", api.addMaterials)
	cg.PUT("/:classId/homework", api.setHomework)
	cg.GET("/:classId/stats", api.stats)
}

func (api *classApi) checkUUIDParam(ctx echo.Context, name string) (string, error) {
	val := ctx.Param(name)
	if err := api.deps.Validate.Var(val, "required,uuid4"); err != nil {
		return "", core.NewValidationError(errors.New("invalid "+name),
			core.FieldError{Field: name, Error: "invalid " + name})
	}
	return val, nil
}

// bindClassFilter reads the status/startDate/endDate query params. Dates
// accept YYYY-MM-DD or RFC 3339; a malformed value is a validation error.
func bindClassFilter(ctx echo.Context) (class.QueryFilter, error) {
	var filter class.QueryFilter
	filter.Status = class.Status(ctx.QueryParam("status"))
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, core.NewValidationError(errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "invalid status: " + string(filter.Status)})
	}

	for param, dst := range map[string]*time.Time{
		"startDate": &filter.StartDate,
		"endDate":   &filter.EndDate,
	} {
		val := ctx.QueryParam(param)
		if val == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", val)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, val); err != nil {
				return filter, core.NewValidationError(errors.New("invalid "+param),
					core.FieldError{Field: param, Error: "invalid date: " + val})
			}
		}
		*dst = t
	}
	return filter, nil
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.ClassSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) byBatch(ctx echo.Context) error {
	batchID, err := api.checkUUIDParam(ctx, "batchId")
	if err != nil {
		return err
	}
	filter, err := bindClassFilter(ctx)
	if err != nil {
		return err
	}

	classes, err := api.deps.ClassSvc.ByBatch(ctx.Request().Context(), batchID, filter)
	if err != nil {
		return errors.Wrap(err, "querying batch classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) byTeacher(ctx echo.Context) error {
	teacherID, err := api.checkUUIDParam(ctx, "teacherId")
	if err != nil {
		return err
	}
	filter, err := bindClassFilter(ctx)
	if err != nil {
		return err
	}

	classes, err := api.deps.ClassSvc.ByTeacher(ctx.Request().Context(), teacherID, filter)
	if err != nil {
		return errors.Wrap(err, "querying teacher classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) upcoming(ctx echo.Context) error {
	filter, err := bindClassFilter(ctx)
	if err != nil {
		return err
	}
	filter.BatchID = ctx.QueryParam("batchId")
	filter.TeacherID = ctx.QueryParam("teacherId")
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))

	classes, err := api.deps.ClassSvc.Upcoming(ctx.Request().Context(), filter, limit)
	if err != nil {
		return errors.Wrap(err, "querying upcoming classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	id, err := api.checkUUIDParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.deps.ClassSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.ClassSvc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	c, err := api.deps.ClassSvc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "class deleted successfully",
		"class":   c,
	})
}

type attendanceRequest struct {
	Attendance []class.AttendanceMark `json:"attendance"`
}

// markAttendance replaces the whole roster; the submitting identity is
// stamped on every entry.
func (api *classApi) markAttendance(ctx echo.Context) error {
	classID, err := api.checkUUIDParam(ctx, "classId")
	if err != nil {
		return err
	}

	var data attendanceRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to attendanceRequest")
	}
	for i := range data.Attendance {
		if err = api.deps.Validate.Struct(&data.Attendance[i]); err != nil {
			return err
		}
	}

	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	c, err := api.deps.ClassSvc.MarkAttendance(ctx.Request().Context(), classID, data.Attendance, usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

type materialsRequest struct {
	Materials []class.NewMaterial `json:"materials"`
}

func (api *classApi) addMaterials(ctx echo.Context) error {
	classID, err := api.checkUUIDParam(ctx, "classId")
	if err != nil {
		return err
	}

	var data materialsRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to materialsRequest")
	}
	for i := range data.Materials {
		if err = api.deps.Validate.Struct(&data.Materials[i]); err != nil {
			return err
		}
	}

	c, err := api.deps.ClassSvc.AddMaterials(ctx.Request().Context(), classID, data.Materials)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) setHomework(ctx echo.Context) error {
	classID, err := api.checkUUIDParam(ctx, "classId")
	if err != nil {
		return err
	}

	var data class.UpdateHomework
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHomework")
	}

	c, err := api.deps.ClassSvc.SetHomework(ctx.Request().Context(), classID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) stats(ctx echo.Context) error {
	classID, err := api.checkUUIDParam(ctx, "classId")
	if err != nil {
		return err
	}

	stats, err := api.deps.ClassSvc.GetStats(ctx.Request().Context(), classID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}
