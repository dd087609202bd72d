package hasura

import "muroro-livestock/internal/platform/graphql"

// Todas las selecciones llevan __typename e id para que el cache normalice.

const animalFields = `
	__typename
	id
	user_id
	type
	breed
	name
	birth_date
	acquisition_date
	status
	health_status
	notes
	created_at`

var getAnimals = graphql.Operation{
	Name: "GetAnimals",
	Document: `query GetAnimals($userId: uuid!) {
  animals(where: {user_id: {_eq: $userId}}, order_by: {created_at: desc}) {` + animalFields + `
  }
}`,
	Required: []string{"userId"},
}

var getAnimal = graphql.Operation{
	Name: "GetAnimal",
	Document: `query GetAnimal($id: uuid!) {
  animals_by_pk(id: $id) {` + animalFields + `
  }
}`,
	Required: []string{"id"},
}

var insertAnimal = graphql.Operation{
	Name: "InsertAnimal",
	Document: `mutation InsertAnimal($object: animals_insert_input!) {
  insert_animals_one(object: $object) {` + animalFields + `
  }
}`,
	Required: []string{"object"},
}

var deleteAnimal = graphql.Operation{
	Name: "DeleteAnimal",
	Document: `mutation DeleteAnimal($id: uuid!) {
  delete_animals_by_pk(id: $id) {
    __typename
    id
  }
}`,
	Required: []string{"id"},
}

var getDashboardStats = graphql.Operation{
	Name: "GetDashboardStats",
	Document: `query GetDashboardStats($userId: uuid!) {
  animals_aggregate(where: {user_id: {_eq: $userId}}) {
    aggregate {
      count
    }
  }
  eggs_aggregate(where: {user_id: {_eq: $userId}}) {
    aggregate {
      sum {
        quantity
      }
    }
  }
  feeds_aggregate(where: {user_id: {_eq: $userId}}) {
    aggregate {
      sum {
        quantity
      }
    }
  }
  animals(where: {user_id: {_eq: $userId}, health_status: {_eq: "sick"}}) {
    __typename
    id
    name
    type
    health_status
  }
}`,
	Required: []string{"userId"},
}
