package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"olexvol/liftlog/internal/domain"
	"olexvol/liftlog/internal/service"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs for API (Data Transfer Objects) ---

type CreateWorkoutRequest struct {
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

type UpdateWorkoutRequest struct {
	Name      *string `json:"name"`
	Notes     *string `json:"notes"`
	Completed *bool   `json:"completed"`
}

type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	MuscleGroup string `json:"muscleGroup"`
	Notes       string `json:"notes"`
	Order       *int   `json:"order" binding:"required"`
}

type UpdateExerciseRequest struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscleGroup"`
	Notes       *string `json:"notes"`
	Order       *int    `json:"order"`
}

type CreateSupersetRequest struct {
	Notes string `json:"notes"`
	Order *int   `json:"order" binding:"required"`
}

type UpdateSupersetRequest struct {
	Notes *string `json:"notes"`
	Order *int    `json:"order"`
}

type CreateSetRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
	Reps   *int     `json:"reps" binding:"required"`
	Notes  string   `json:"notes"`
	Order  *int     `json:"order" binding:"required"`
}

type UpdateSetRequest struct {
	Weight    *float64 `json:"weight"`
	Reps      *int     `json:"reps"`
	Notes     *string  `json:"notes"`
	Order     *int     `json:"order"`
	Completed *bool    `json:"completed"`
}

type CreateSubSetRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
	Reps   *int     `json:"reps" binding:"required"`
	Order  *int     `json:"order" binding:"required"`
}

type CreateDropsetRequest struct {
	Notes   string                `json:"notes"`
	Order   *int                  `json:"order" binding:"required"`
	SubSets []CreateSubSetRequest `json:"subSets" binding:"required,min=1,dive"`
}

type UpdateDropsetRequest struct {
	Notes *string `json:"notes"`
	Order *int    `json:"order"`
}

type UpdateSubSetRequest struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
	Order  *int     `json:"order"`
}

type SetResponse struct {
	ID        string    `json:"id"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Notes     string    `json:"notes,omitempty"`
	Order     int       `json:"order"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubSetResponse struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Order  int     `json:"order"`
}

type DropsetResponse struct {
	ID      string           `json:"id"`
	Notes   string           `json:"notes,omitempty"`
	Order   int              `json:"order"`
	SubSets []SubSetResponse `json:"subSets"`
}

type ExerciseResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	MuscleGroup string            `json:"muscleGroup,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Order       int               `json:"order"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	Sets        []SetResponse     `json:"sets"`
	Dropsets    []DropsetResponse `json:"dropsets"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type SupersetResponse struct {
	ID        string             `json:"id"`
	Notes     string             `json:"notes,omitempty"`
	Order     int                `json:"order"`
	Exercises []ExerciseResponse `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// WorkoutItemResponse is the wire form of the WorkoutItem union: the type
// tag plus exactly one populated variant.
type WorkoutItemResponse struct {
	Type     domain.ItemType   `json:"type"`
	Exercise *ExerciseResponse `json:"exercise,omitempty"`
	Superset *SupersetResponse `json:"superset,omitempty"`
}

type WorkoutResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Notes     string                `json:"notes,omitempty"`
	StartTime *time.Time            `json:"startTime,omitempty"`
	EndTime   *time.Time            `json:"endTime,omitempty"`
	Completed bool                  `json:"completed"`
	Items     []WorkoutItemResponse `json:"items"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type ImageUploadResponse struct {
	Exercise ExerciseResponse `json:"exercise"`
	ImageURL string           `json:"imageUrl"`
}

// --- Mapping helpers ---

func MapSetToResponse(set *domain.ExerciseSet) SetResponse {
	return SetResponse{
		ID:        set.ID.Hex(),
		Weight:    set.Weight,
		Reps:      set.Reps,
		Notes:     set.Notes,
		Order:     set.Order,
		Completed: set.Completed,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	}
}

func MapSubSetToResponse(subSet *domain.DropsetSubSet) SubSetResponse {
	return SubSetResponse{
		ID:     subSet.ID.Hex(),
		Weight: subSet.Weight,
		Reps:   subSet.Reps,
		Order:  subSet.Order,
	}
}

func MapDropsetToResponse(dropset *domain.Dropset) DropsetResponse {
	subSets := make([]SubSetResponse, len(dropset.SubSets))
	for i := range dropset.SubSets {
		subSets[i] = MapSubSetToResponse(&dropset.SubSets[i])
	}
	return DropsetResponse{
		ID:      dropset.ID.Hex(),
		Notes:   dropset.Notes,
		Order:   dropset.Order,
		SubSets: subSets,
	}
}

func MapExerciseToResponse(exercise *domain.Exercise) ExerciseResponse {
	sets := make([]SetResponse, len(exercise.Sets))
	for i := range exercise.Sets {
		sets[i] = MapSetToResponse(&exercise.Sets[i])
	}
	dropsets := make([]DropsetResponse, len(exercise.Dropsets))
	for i := range exercise.Dropsets {
		dropsets[i] = MapDropsetToResponse(&exercise.Dropsets[i])
	}
	return ExerciseResponse{
		ID:          exercise.ID.Hex(),
		Name:        exercise.Name,
		MuscleGroup: string(exercise.MuscleGroup),
		Notes:       exercise.Notes,
		Order:       exercise.Order,
		ImageURL:    exercise.ImageURL,
		Sets:        sets,
		Dropsets:    dropsets,
		CreatedAt:   exercise.CreatedAt,
		UpdatedAt:   exercise.UpdatedAt,
	}
}

func MapSupersetToResponse(superset *domain.Superset) SupersetResponse {
	exercises := make([]ExerciseResponse, len(superset.Exercises))
	for i := range superset.Exercises {
		exercises[i] = MapExerciseToResponse(&superset.Exercises[i])
	}
	return SupersetResponse{
		ID:        superset.ID.Hex(),
		Notes:     superset.Notes,
		Order:     superset.Order,
		Exercises: exercises,
		CreatedAt: superset.CreatedAt,
		UpdatedAt: superset.UpdatedAt,
	}
}

// MapWorkoutItemToResponse switches exhaustively on the union tag.
func MapWorkoutItemToResponse(item domain.WorkoutItem) WorkoutItemResponse {
	switch v := item.(type) {
	case *domain.Exercise:
		resp := MapExerciseToResponse(v)
		return WorkoutItemResponse{Type: domain.ItemTypeExercise, Exercise: &resp}
	case *domain.Superset:
		resp := MapSupersetToResponse(v)
		return WorkoutItemResponse{Type: domain.ItemTypeSuperset, Superset: &resp}
	}
	return WorkoutItemResponse{}
}

func MapWorkoutToResponse(workout *domain.Workout) WorkoutResponse {
	items := make([]WorkoutItemResponse, len(workout.Items))
	for i, item := range workout.Items {
		items[i] = MapWorkoutItemToResponse(item)
	}
	return WorkoutResponse{
		ID:        workout.ID.Hex(),
		Name:      workout.Name,
		Notes:     workout.Notes,
		StartTime: workout.StartTime,
		EndTime:   workout.EndTime,
		Completed: workout.Completed,
		Items:     items,
		CreatedAt: workout.CreatedAt,
		UpdatedAt: workout.UpdatedAt,
	}
}

// --- Shared handler helpers ---

// handleServiceError maps service errors onto HTTP statuses. Ownership
// failures arrive here already folded into service.ErrNotFound.
func handleServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		abortWithError(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "not found")
	case service.IsConflict(err):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func (h *WorkoutHandler) callerID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Workout handlers ---

// CreateWorkout creates an empty workout for the authenticated user.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, req.Name, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapWorkoutToResponse(workout))
}

// ListWorkouts returns the authenticated user's workouts, without items.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.GetWorkouts(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout returns the fully assembled workout tree.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, workoutID, service.WorkoutUpdateInput{
		Name:      req.Name,
		Notes:     req.Notes,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StartWorkout stamps the start time; starting twice is a conflict.
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.StartWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// EndWorkout stamps the end time and marks the workout completed; it
// requires a prior start.
func (h *WorkoutHandler) EndWorkout(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.EndWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutToResponse(workout))
}

// --- Tree mutation handlers ---

// CreateExercise adds an exercise directly under a workout.
func (h *WorkoutHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.workoutService.AddExerciseToWorkout(c.Request.Context(), userID, workoutID, service.ExerciseInput{
		Name:        req.Name,
		MuscleGroup: domain.MuscleGroup(req.MuscleGroup),
		Notes:       req.Notes,
		Order:       *req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// CreateSuperset adds a superset under a workout.
func (h *WorkoutHandler) CreateSuperset(c *gin.Context) {
	var req CreateSupersetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	workoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	superset, err := h.workoutService.AddSupersetToWorkout(c.Request.Context(), userID, workoutID, service.SupersetInput{
		Notes: req.Notes,
		Order: *req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSupersetToResponse(superset))
}

// CreateExerciseInSuperset adds an exercise under a superset.
func (h *WorkoutHandler) CreateExerciseInSuperset(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	supersetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.workoutService.AddExerciseToSuperset(c.Request.Context(), userID, supersetID, service.ExerciseInput{
		Name:        req.Name,
		MuscleGroup: domain.MuscleGroup(req.MuscleGroup),
		Notes:       req.Notes,
		Order:       *req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// CreateSet adds a set under an exercise.
func (h *WorkoutHandler) CreateSet(c *gin.Context) {
	var req CreateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	set, err := h.workoutService.AddSetToExercise(c.Request.Context(), userID, exerciseID, service.SetInput{
		Weight: *req.Weight,
		Reps:   *req.Reps,
		Notes:  req.Notes,
		Order:  *req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSetToResponse(set))
}

// CreateDropset adds a dropset (with its initial sub-sets) under an exercise.
func (h *WorkoutHandler) CreateDropset(c *gin.Context) {
	var req CreateDropsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	subSets := make([]service.SubSetInput, len(req.SubSets))
	for i, sub := range req.SubSets {
		subSets[i] = service.SubSetInput{Weight: *sub.Weight, Reps: *sub.Reps, Order: *sub.Order}
	}
	dropset, err := h.workoutService.AddDropsetToExercise(c.Request.Context(), userID, exerciseID, service.DropsetInput{
		Notes:   req.Notes,
		Order:   *req.Order,
		SubSets: subSets,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapDropsetToResponse(dropset))
}

// CreateSubSet adds a sub-set under a dropset.
func (h *WorkoutHandler) CreateSubSet(c *gin.Context) {
	var req CreateSubSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	dropsetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	subSet, err := h.workoutService.AddSubSetToDropset(c.Request.Context(), userID, dropsetID, service.SubSetInput{
		Weight: *req.Weight,
		Reps:   *req.Reps,
		Order:  *req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSubSetToResponse(subSet))
}

func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var muscleGroup *domain.MuscleGroup
	if req.MuscleGroup != nil {
		mg := domain.MuscleGroup(*req.MuscleGroup)
		muscleGroup = &mg
	}
	exercise, err := h.workoutService.UpdateExercise(c.Request.Context(), userID, exerciseID, service.ExerciseUpdateInput{
		Name:        req.Name,
		MuscleGroup: muscleGroup,
		Notes:       req.Notes,
		Order:       req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) UpdateSuperset(c *gin.Context) {
	var req UpdateSupersetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	supersetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	superset, err := h.workoutService.UpdateSuperset(c.Request.Context(), userID, supersetID, service.SupersetUpdateInput{
		Notes: req.Notes,
		Order: req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSupersetToResponse(superset))
}

func (h *WorkoutHandler) DeleteSuperset(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	supersetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSuperset(c.Request.Context(), userID, supersetID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	setID, ok := pathID(c, "id")
	if !ok {
		return
	}

	set, err := h.workoutService.UpdateSet(c.Request.Context(), userID, setID, service.SetUpdateInput{
		Weight:    req.Weight,
		Reps:      req.Reps,
		Notes:     req.Notes,
		Order:     req.Order,
		Completed: req.Completed,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSetToResponse(set))
}

func (h *WorkoutHandler) DeleteSet(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	setID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSet(c.Request.Context(), userID, setID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) UpdateDropset(c *gin.Context) {
	var req UpdateDropsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	dropsetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	dropset, err := h.workoutService.UpdateDropset(c.Request.Context(), userID, dropsetID, service.DropsetUpdateInput{
		Notes: req.Notes,
		Order: req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapDropsetToResponse(dropset))
}

func (h *WorkoutHandler) DeleteDropset(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	dropsetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteDropset(c.Request.Context(), userID, dropsetID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkoutHandler) UpdateSubSet(c *gin.Context) {
	var req UpdateSubSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	subSetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	subSet, err := h.workoutService.UpdateSubSet(c.Request.Context(), userID, subSetID, service.SubSetUpdateInput{
		Weight: req.Weight,
		Reps:   req.Reps,
		Order:  req.Order,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSubSetToResponse(subSet))
}

func (h *WorkoutHandler) DeleteSubSet(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	subSetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSubSet(c.Request.Context(), userID, subSetID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadExerciseImage accepts a multipart "image" file and stores it for the
// exercise.
func (h *WorkoutHandler) UploadExerciseImage(c *gin.Context) {
	userID, ok := h.callerID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "An image file is required.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	exercise, url, err := h.workoutService.AttachExerciseImage(
		c.Request.Context(), userID, exerciseID, fileHeader.Filename, contentType, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ImageUploadResponse{
		Exercise: MapExerciseToResponse(exercise),
		ImageURL: url,
	})
}
