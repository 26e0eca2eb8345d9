package notifications

var commonTemplates = map[string]string{
	`default`: `
{{- with .Report -}}
  {{- if .Failed -}}
    Failed to reload {{.ContainerName}} ({{.ContainerID.ShortID}}) from {{.Image}}: {{.Err}}
    {{- if .Removed}}. The old container was removed and no replacement is running.{{end}}
  {{- else -}}
    Reloaded {{.ContainerName}} ({{.ContainerID.ShortID}}) from {{.Image}} as {{.NewID.ShortID}}
  {{- end -}}
{{- end -}}`,
}
