package dto

import "learning-buddy/internal/domain/roadmap"

type RoadmapByEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AllRoadmapsResponse struct {
	TotalUsers int            `json:"total_users"`
	Roadmaps   []roadmap.View `json:"roadmaps"`
}

func NewAllRoadmapsResponse(views []roadmap.View) AllRoadmapsResponse {
	if views == nil {
		views = []roadmap.View{}
	}
	return AllRoadmapsResponse{TotalUsers: len(views), Roadmaps: views}
}
