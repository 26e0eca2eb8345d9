package container

import (
	"context"
	"io"
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/tagreload/pkg/container/mocks"
	"github.com/nicholas-fedor/tagreload/pkg/types"
)

const (
	webID = "3d88e0e3543281c747d88b27e246578b65ae8964ba86c7cd7522cf84e0978134"
	newID = "b978af0b858aa8855cce46b628817d4ed58e58f2c4f66c9b9c5449134ed4c008"
)

func webInspectResponse() *dockerContainer.InspectResponse {
	return &dockerContainer.InspectResponse{
		ContainerJSONBase: &dockerContainer.ContainerJSONBase{
			ID:   webID,
			Name: "/web",
			HostConfig: &dockerContainer.HostConfig{
				ExtraHosts: []string{"db:10.0.0.2"},
			},
		},
		Config: &dockerContainer.Config{
			Image: "myapp",
			Env:   []string{"MODE=prod"},
		},
		Mounts: []dockerContainer.MountPoint{
			{Source: "db_data", Destination: "/var/lib/db"},
			{Source: "./src", Destination: "/app"},
		},
	}
}

var _ = ginkgo.Describe("the client", func() {
	var docker *dockerClient.Client
	var mockServer *ghttp.Server
	ctx := context.Background()

	ginkgo.BeforeEach(func() {
		mockServer = ghttp.NewServer()
		docker, _ = dockerClient.NewClientWithOpts(
			dockerClient.WithHost(mockServer.URL()),
			dockerClient.WithHTTPClient(mockServer.HTTPTestServer.Client()))
	})
	ginkgo.AfterEach(func() {
		mockServer.Close()
	})

	ginkgo.When("listing containers", func() {
		ginkgo.It("should keep the listing order and port definitions", func() {
			mockServer.AppendHandlers(mocks.ListContainersHandler(
				dockerContainer.Summary{
					ID:    webID,
					Names: []string{"/web"},
					Image: "myapp",
					Ports: []dockerContainer.Port{
						{PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
						{PrivatePort: 53, Type: "udp"},
					},
				},
				dockerContainer.Summary{ID: newID, Names: []string{"/otherapp"}, Image: "otherapp"},
			))

			containers, err := client{api: docker}.ListContainers(ctx)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(containers).To(gomega.HaveLen(2))
			gomega.Expect(containers[0].Name()).To(gomega.Equal("web"))
			gomega.Expect(containers[0].Ports).To(gomega.Equal([]types.Port{
				{PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
				{PrivatePort: 53, Type: "udp"},
			}))
			gomega.Expect(containers[1].Name()).To(gomega.Equal("otherapp"))
		})
		ginkgo.It("should return an error when the daemon fails", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.HaveSuffix("/containers/json")),
				mocks.ServerErrorResponse("server error"),
			))

			_, err := client{api: docker}.ListContainers(ctx)
			gomega.Expect(err).To(gomega.MatchError(errListContainersFailed))
		})
	})

	ginkgo.When("inspecting a container", func() {
		ginkgo.It("should return image, environment, mounts and extra hosts", func() {
			mockServer.AppendHandlers(mocks.InspectContainerHandler(webID, webInspectResponse()))

			inspection, err := client{api: docker}.InspectContainer(ctx, webID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(inspection).To(gomega.Equal(types.ContainerInspection{
				ID:    webID,
				Name:  "web",
				Image: "myapp",
				Env:   []string{"MODE=prod"},
				Mounts: []types.Mount{
					{Source: "db_data", Destination: "/var/lib/db"},
					{Source: "./src", Destination: "/app"},
				},
				ExtraHosts: []string{"db:10.0.0.2"},
			}))
		})
		ginkgo.It("should keep the not-found classification for a vanished container", func() {
			mockServer.AppendHandlers(mocks.InspectContainerHandler(webID, nil))

			_, err := client{api: docker}.InspectContainer(ctx, webID)
			gomega.Expect(err).To(gomega.MatchError(errInspectContainerFailed))
			gomega.Expect(errdefs.IsNotFound(err)).To(gomega.BeTrue())
		})
		ginkgo.It("should reject a response without configuration", func() {
			response := webInspectResponse()
			response.Config = nil
			mockServer.AppendHandlers(mocks.InspectContainerHandler(webID, response))

			_, err := client{api: docker}.InspectContainer(ctx, webID)
			gomega.Expect(err).To(gomega.MatchError(errNoContainerConfig))
		})
	})

	ginkgo.When("removing a container", func() {
		ginkgo.It("should force the removal", func() {
			mockServer.AppendHandlers(mocks.RemoveContainerHandler(webID, mocks.Found))

			err := client{api: docker}.RemoveContainer(ctx, webID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.HaveLen(1))
		})
		ginkgo.It("should return an error for a missing container", func() {
			mockServer.AppendHandlers(mocks.RemoveContainerHandler(webID, mocks.Missing))

			err := client{api: docker}.RemoveContainer(ctx, webID)
			gomega.Expect(err).To(gomega.MatchError(errRemoveContainerFailed))
		})
	})

	ginkgo.When("creating a container", func() {
		ginkgo.It("should send the recreate spec as create configuration", func() {
			var captured dockerContainer.CreateRequest
			mockServer.AppendHandlers(mocks.CreateContainerHandler("", newID, &captured))

			id, err := client{api: docker}.CreateContainer(ctx, types.RecreateSpec{
				Image:              "myapp:latest",
				Ports:              []types.ExposedPort{{Port: 80, Protocol: "tcp"}},
				PortBindings:       map[uint16]uint16{80: 8080},
				VolumeDestinations: []string{"/app"},
				VolumeBinds:        []string{"./src:/app"},
				ExtraHosts:         map[string]string{"db": "10.0.0.2"},
				Env:                []string{"MODE=prod"},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(types.ContainerID(newID)))

			gomega.Expect(captured.Config).ToNot(gomega.BeNil())
			gomega.Expect(captured.Image).To(gomega.Equal("myapp:latest"))
			gomega.Expect(captured.Env).To(gomega.Equal([]string{"MODE=prod"}))
			gomega.Expect(captured.ExposedPorts).To(gomega.HaveKey(gomega.BeEquivalentTo("80/tcp")))
			gomega.Expect(captured.Volumes).To(gomega.HaveKey("/app"))
			gomega.Expect(captured.HostConfig).ToNot(gomega.BeNil())
			gomega.Expect(captured.HostConfig.Binds).To(gomega.Equal([]string{"./src:/app"}))
			gomega.Expect(captured.HostConfig.ExtraHosts).To(gomega.Equal([]string{"db:10.0.0.2"}))
			gomega.Expect(captured.HostConfig.PortBindings).To(gomega.HaveKey(gomega.BeEquivalentTo("80/tcp")))
		})
		ginkgo.It("should pass the preserved name", func() {
			mockServer.AppendHandlers(mocks.CreateContainerHandler("web", newID, nil))

			id, err := client{api: docker}.CreateContainer(ctx, types.RecreateSpec{Image: "myapp", Name: "web"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(types.ContainerID(newID)))
		})
		ginkgo.It("should fail before calling the daemon for an invalid spec", func() {
			_, err := client{api: docker}.CreateContainer(ctx, types.RecreateSpec{
				Image: "myapp",
				Ports: []types.ExposedPort{{Port: 80, Protocol: "quic"}},
			})
			gomega.Expect(err).To(gomega.MatchError(errInvalidPort))
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("starting a container", func() {
		ginkgo.It("should start the created container", func() {
			mockServer.AppendHandlers(mocks.StartContainerHandler(newID, mocks.Found))

			err := client{api: docker}.StartContainer(ctx, newID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})
		ginkgo.It("should return an error when the container is gone", func() {
			mockServer.AppendHandlers(mocks.StartContainerHandler(newID, mocks.Missing))

			err := client{api: docker}.StartContainer(ctx, newID)
			gomega.Expect(err).To(gomega.MatchError(errStartContainerFailed))
		})
	})

	ginkgo.When("streaming events", func() {
		ginkgo.It("should forward tag events and report the end of the stream", func() {
			mockServer.AppendHandlers(mocks.EventsHandler(
				mocks.TagMessage("myapp:latest", "sha256:4dbc5f9c07028a985e14d1393e849ea07f68804c4293050d5a641b138db72daa"),
			))

			events, errs := client{api: docker}.StreamEvents(ctx)

			var event types.TagEvent
			gomega.Eventually(events).Should(gomega.Receive(&event))
			gomega.Expect(event.IsTag()).To(gomega.BeTrue())
			gomega.Expect(event.ImageReference).To(gomega.Equal("myapp:latest"))
			gomega.Expect(event.Time.IsZero()).To(gomega.BeFalse())

			var err error
			gomega.Eventually(errs).Should(gomega.Receive(&err))
			gomega.Expect(err).To(gomega.MatchError(errEventStreamFailed))
			gomega.Expect(err).To(gomega.MatchError(io.EOF))
		})
		ginkgo.It("should filter the stream to image tag events", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.HaveSuffix("/events")),
				func(_ http.ResponseWriter, r *http.Request) {
					filters := r.URL.Query().Get("filters")
					gomega.Expect(filters).To(gomega.ContainSubstring(`"type":{"image":true}`))
					gomega.Expect(filters).To(gomega.ContainSubstring(`"event":{"tag":true}`))
				},
				ghttp.RespondWith(http.StatusOK, nil),
			))

			_, errs := client{api: docker}.StreamEvents(ctx)
			gomega.Eventually(errs).Should(gomega.Receive())
		})
	})

	ginkgo.It("should report the client API version", func() {
		gomega.Expect(client{api: docker}.GetVersion()).ToNot(gomega.BeEmpty())
	})
})
