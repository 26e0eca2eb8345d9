// Package mocks provides ghttp handlers that emulate the Docker Engine API endpoints used by tagreload.
package mocks

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// FoundStatus selects whether a handler answers as if the container exists.
type FoundStatus bool

const (
	Found   FoundStatus = true
	Missing FoundStatus = false
)

// Mock response fixture for no-content status (204).
var noContentStatusResponse = ghttp.RespondWith(http.StatusNoContent, nil)

// Includes a standard "No such container" message with the ID.
func containerNotFoundResponse(containerID string) http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(
		http.StatusNotFound,
		map[string]string{"message": "No such container: " + containerID},
	)
}

// ServerErrorResponse answers with a 500 and the given daemon message.
func ServerErrorResponse(message string) http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(http.StatusInternalServerError, map[string]string{"message": message})
}

// ListContainersHandler serves the given summaries for the running containers list.
func ListContainersHandler(containers ...container.Summary) http.HandlerFunc {
	if containers == nil {
		containers = []container.Summary{}
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("/containers/json")),
		ghttp.RespondWithJSONEncoded(http.StatusOK, containers),
	)
}

// InspectContainerHandler returns a 404 if containerInfo is nil; otherwise, serves the provided info.
func InspectContainerHandler(containerID string, containerInfo *container.InspectResponse) http.HandlerFunc {
	responseHandler := containerNotFoundResponse(containerID)
	if containerInfo != nil {
		responseHandler = ghttp.RespondWithJSONEncoded(http.StatusOK, containerInfo)
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("/containers/%s/json", containerID)),
		responseHandler,
	)
}

// RemoveContainerHandler verifies a forced removal; returns 204 if found, 404 if not.
func RemoveContainerHandler(containerID string, found FoundStatus) http.HandlerFunc {
	responseHandler := noContentStatusResponse
	if !found {
		responseHandler = containerNotFoundResponse(containerID)
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("DELETE", gomega.HaveSuffix("/containers/%s", containerID), "force=1"),
		responseHandler,
	)
}

// CreateContainerHandler answers a create request with newID and stores the decoded body in captured.
func CreateContainerHandler(name string, newID string, captured *container.CreateRequest) http.HandlerFunc {
	query := ""
	if name != "" {
		query = "name=" + name
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/create"), query),
		func(_ http.ResponseWriter, r *http.Request) {
			if captured != nil {
				gomega.Expect(json.NewDecoder(r.Body).Decode(captured)).To(gomega.Succeed())
			}
		},
		ghttp.RespondWithJSONEncoded(http.StatusCreated, container.CreateResponse{ID: newID}),
	)
}

// StartContainerHandler returns 204 if found, 404 if not.
func StartContainerHandler(containerID string, found FoundStatus) http.HandlerFunc {
	responseHandler := noContentStatusResponse
	if !found {
		responseHandler = containerNotFoundResponse(containerID)
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/%s/start", containerID)),
		responseHandler,
	)
}

// EventsHandler streams the given messages and then closes the stream.
func EventsHandler(messages ...events.Message) http.HandlerFunc {
	var body bytes.Buffer

	encoder := json.NewEncoder(&body)
	for _, msg := range messages {
		gomega.ExpectWithOffset(1, encoder.Encode(msg)).To(gomega.Succeed())
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("/events")),
		ghttp.RespondWith(http.StatusOK, body.Bytes()),
	)
}

// TagMessage builds an image tag event for the given reference.
func TagMessage(reference string, imageID string) events.Message {
	return events.Message{
		Type:   events.ImageEventType,
		Action: events.Action("tag"),
		Actor: events.Actor{
			ID:         imageID,
			Attributes: map[string]string{"name": reference},
		},
		TimeNano: 1700000000000000000,
	}
}
