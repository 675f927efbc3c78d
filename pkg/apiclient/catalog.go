package apiclient

import "net/http"

// Operation catalogue. Paths are relative to the client prefix.
var (
	EndpointSystemInfo = Endpoint{Name: "get_system_info", Method: http.MethodGet, Path: "/system/info", Kind: PayloadNone}
	EndpointHealth     = Endpoint{Name: "health_check", Method: http.MethodGet, Path: "/system/health", Kind: PayloadNone}

	EndpointInferImage = Endpoint{Name: "infer_image", Method: http.MethodPost, Path: "/inference/image", Kind: PayloadMultipart}
	EndpointInferBatch = Endpoint{Name: "infer_batch", Method: http.MethodPost, Path: "/inference/batch", Kind: PayloadMultipart}

	EndpointStartTraining  = Endpoint{Name: "start_training", Method: http.MethodPost, Path: "/training/start", Kind: PayloadJSON}
	EndpointTrainingStatus = Endpoint{Name: "get_training_status", Method: http.MethodGet, Path: "/training/status/{task_id}", Kind: PayloadNone}
	EndpointTrainingTasks  = Endpoint{Name: "list_training_tasks", Method: http.MethodGet, Path: "/training/tasks", Kind: PayloadNone}

	EndpointListModels  = Endpoint{Name: "list_models", Method: http.MethodGet, Path: "/models/list", Kind: PayloadNone}
	EndpointUploadModel = Endpoint{Name: "upload_model", Method: http.MethodPost, Path: "/models/upload", Kind: PayloadMultipart}
	EndpointExportModel = Endpoint{Name: "export_model", Method: http.MethodPost, Path: "/models/export", Kind: PayloadJSON}

	EndpointListDatasets  = Endpoint{Name: "list_datasets", Method: http.MethodGet, Path: "/datasets/list", Kind: PayloadNone}
	EndpointUploadDataset = Endpoint{Name: "upload_dataset", Method: http.MethodPost, Path: "/datasets/upload", Kind: PayloadMultipart}

	EndpointLabelStudioCheck   = Endpoint{Name: "check_labelstudio", Method: http.MethodGet, Path: "/labelstudio/check", Kind: PayloadNone}
	EndpointAnnotationProjects = Endpoint{Name: "list_annotation_projects", Method: http.MethodGet, Path: "/labelstudio/projects", Kind: PayloadNone}
	EndpointCreateProject      = Endpoint{Name: "create_annotation_project", Method: http.MethodPost, Path: "/labelstudio/projects/create", Kind: PayloadQuery}
	EndpointExportAnnotations  = Endpoint{Name: "export_annotations", Method: http.MethodPost, Path: "/labelstudio/export/{project_id}", Kind: PayloadQuery}
)

// Catalog returns every endpoint the client knows, in a stable order.
func Catalog() []Endpoint {
	return []Endpoint{
		EndpointSystemInfo,
		EndpointHealth,
		EndpointInferImage,
		EndpointInferBatch,
		EndpointStartTraining,
		EndpointTrainingStatus,
		EndpointTrainingTasks,
		EndpointListModels,
		EndpointUploadModel,
		EndpointExportModel,
		EndpointListDatasets,
		EndpointUploadDataset,
		EndpointLabelStudioCheck,
		EndpointAnnotationProjects,
		EndpointCreateProject,
		EndpointExportAnnotations,
	}
}
