package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "askbase_"

const (
	TABLE_KNOWLEDGE_BASE           TableName = "knowledge_base"
	TABLE_KNOWLEDGE_BASE_ITEM      TableName = "knowledge_base_item"
	TABLE_KNOWLEDGE_BASE_STAR      TableName = "knowledge_base_star"
	TABLE_KNOWLEDGE_BASE_QA_RECORD TableName = "knowledge_base_qa_record"
	TABLE_KNOWLEDGE_BASE_QA_REF    TableName = "knowledge_base_qa_ref"
	TABLE_KNOWLEDGE_BASE_EMBEDDING TableName = "knowledge_base_embedding"
	TABLE_KNOWLEDGE_BASE_GRAPH     TableName = "knowledge_base_graph"
	TABLE_FILE                     TableName = "file"
	TABLE_USER_DAY_COST            TableName = "user_day_cost"
)

const NO_PAGING = 0
